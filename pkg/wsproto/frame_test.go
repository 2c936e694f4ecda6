package wsproto

import "testing"

func TestOpcodeClassification(t *testing.T) {
	tests := []struct {
		opcode   Opcode
		control  bool
		data     bool
		reserved bool
	}{
		{OpContinuation, false, true, false},
		{OpText, false, true, false},
		{OpBinary, false, true, false},
		{Opcode(0x3), false, false, true},
		{Opcode(0x7), false, false, true},
		{OpClose, true, false, false},
		{OpPing, true, false, false},
		{OpPong, true, false, false},
		{Opcode(0xB), true, false, true},
		{Opcode(0xF), true, false, true},
	}

	for _, tt := range tests {
		if got := tt.opcode.IsControl(); got != tt.control {
			t.Errorf("Opcode(0x%x).IsControl() = %v, want %v", byte(tt.opcode), got, tt.control)
		}
		if got := tt.opcode.IsData(); got != tt.data {
			t.Errorf("Opcode(0x%x).IsData() = %v, want %v", byte(tt.opcode), got, tt.data)
		}
		if got := tt.opcode.IsReserved(); got != tt.reserved {
			t.Errorf("Opcode(0x%x).IsReserved() = %v, want %v", byte(tt.opcode), got, tt.reserved)
		}
	}
}

func TestCloseCodeValid(t *testing.T) {
	valid := []CloseCode{1000, 1001, 1002, 1003, 1007, 1008, 1009, 1010, 1011, 3000, 3999, 4000, 4999}
	for _, code := range valid {
		if !code.Valid() {
			t.Errorf("CloseCode(%d).Valid() = false, want true", code)
		}
	}

	invalid := []CloseCode{0, 999, 1004, 1005, 1006, 1012, 1015, 1016, 2000, 2999, 5000}
	for _, code := range invalid {
		if code.Valid() {
			t.Errorf("CloseCode(%d).Valid() = true, want false", code)
		}
	}
}

func TestCloseCodeString(t *testing.T) {
	if got := CloseNormalClosure.String(); got != "normal closure" {
		t.Errorf("CloseNormalClosure.String() = %q", got)
	}
	if got := CloseProtocolError.String(); got != "protocol error" {
		t.Errorf("CloseProtocolError.String() = %q", got)
	}
}
