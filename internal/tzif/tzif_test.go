package tzif

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBlock_EncodeDecodeRoundTrip(t *testing.T) {
	block := Block{
		Header: Header{
			Typecnt: 2,
			Charcnt: 9,
			Timecnt: 1,
		},
		Data: DataBlock{
			TransitionTimes: []int64{1577836800},
			TransitionTypes: []uint8{1},
			Types: []LocalTimeType{
				{UTOffset: 3600, IsDST: false, DesigIdx: 0},
				{UTOffset: 7200, IsDST: true, DesigIdx: 4},
			},
			Designations: []byte("CET\x00CEST\x00"),
		},
		Footer: Footer{Rule: []byte("CET-1CEST,M3.5.0,M10.5.0/3")},
	}

	var buf bytes.Buffer
	if err := block.Encode(&buf); err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if diff := cmp.Diff(block, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestBlock_EncodeDecodeRoundTrip_NoTransitions(t *testing.T) {
	block := Block{
		Header: Header{
			Typecnt: 1,
			Charcnt: 4,
		},
		Data: DataBlock{
			Types:        []LocalTimeType{{UTOffset: 0, IsDST: false, DesigIdx: 0}},
			Designations: []byte("UTC\x00"),
		},
		Footer: Footer{},
	}

	var buf bytes.Buffer
	if err := block.Encode(&buf); err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if diff := cmp.Diff(block, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_BadMagic(t *testing.T) {
	buf := bytes.NewBufferString("nope, not a block")
	if _, err := Decode(buf); err == nil {
		t.Fatal("Decode() succeeded, want error for bad magic")
	}
}

func TestValidate(t *testing.T) {
	validDesignations := []byte("UTC\x00")
	validTypes := []LocalTimeType{{UTOffset: 0}}

	tests := []struct {
		name    string
		block   Block
		wantErr bool
	}{
		{
			name: "valid",
			block: Block{
				Header: Header{Typecnt: 1, Charcnt: uint32(len(validDesignations))},
				Data:   DataBlock{Types: validTypes, Designations: validDesignations},
			},
		},
		{
			name: "typecnt zero",
			block: Block{
				Header: Header{Typecnt: 0, Charcnt: uint32(len(validDesignations))},
				Data:   DataBlock{Designations: validDesignations},
			},
			wantErr: true,
		},
		{
			name: "typecnt mismatch",
			block: Block{
				Header: Header{Typecnt: 2, Charcnt: uint32(len(validDesignations))},
				Data:   DataBlock{Types: validTypes, Designations: validDesignations},
			},
			wantErr: true,
		},
		{
			name: "charcnt zero",
			block: Block{
				Header: Header{Typecnt: 1, Charcnt: 0},
				Data:   DataBlock{Types: validTypes},
			},
			wantErr: true,
		},
		{
			name: "designations missing NUL terminator",
			block: Block{
				Header: Header{Typecnt: 1, Charcnt: 3},
				Data:   DataBlock{Types: validTypes, Designations: []byte("UTC")},
			},
			wantErr: true,
		},
		{
			name: "transition times/types length mismatch",
			block: Block{
				Header: Header{Typecnt: 1, Charcnt: uint32(len(validDesignations)), Timecnt: 1},
				Data: DataBlock{
					Types:           validTypes,
					Designations:    validDesignations,
					TransitionTimes: []int64{0},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.block)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
