package validator

import "testing"

type seatSelection struct {
	SeatIds []string `validate:"required,min=1,dive,seat_id"`
}

func TestSeatIdValidation(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		seatIds []string
		wantErr bool
	}{
		{name: "should accept well-formed seat ids", seatIds: []string{"A1", "C7", "B12"}},
		{name: "should reject lowercase row letters", seatIds: []string{"a1"}, wantErr: true},
		{name: "should reject ids without a number", seatIds: []string{"C"}, wantErr: true},
		{name: "should reject ids with trailing garbage", seatIds: []string{"C7X"}, wantErr: true},
		{name: "should reject an empty list", seatIds: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(seatSelection{SeatIds: tt.seatIds})

			if tt.wantErr && err == nil {
				t.Errorf("expected validation to fail for %v", tt.seatIds)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error for %v: %v", tt.seatIds, err)
			}
		})
	}
}
