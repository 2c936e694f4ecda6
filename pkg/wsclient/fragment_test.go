package wsclient

import (
	"testing"

	"github.com/wirecat/wirecat/pkg/wsproto"
)

func feed(t *testing.T, fs *fragmentState, fin bool, op wsproto.Opcode, payload string) (*wsproto.Frame, *protocolViolation) {
	t.Helper()
	return fs.absorb(&wsproto.Frame{Fin: fin, Opcode: op, Payload: []byte(payload)})
}

func TestFragmentReassembly(t *testing.T) {
	var fs fragmentState

	msg, viol := feed(t, &fs, false, wsproto.OpText, "ab")
	if msg != nil || viol != nil {
		t.Fatalf("start fragment: msg=%v viol=%v", msg, viol)
	}
	msg, viol = feed(t, &fs, false, wsproto.OpContinuation, "cd")
	if msg != nil || viol != nil {
		t.Fatalf("middle fragment: msg=%v viol=%v", msg, viol)
	}
	msg, viol = feed(t, &fs, true, wsproto.OpContinuation, "ef")
	if viol != nil {
		t.Fatalf("final fragment: viol=%v", viol)
	}
	if msg == nil || string(msg.Payload) != "abcdef" {
		t.Fatalf("reassembled payload = %v", msg)
	}
	if msg.Opcode != wsproto.OpText {
		t.Errorf("opcode = %v, want text", msg.Opcode)
	}
	if fs.active {
		t.Error("state still active after completion")
	}
}

func TestFragmentBinaryOpcodePreserved(t *testing.T) {
	var fs fragmentState
	feed(t, &fs, false, wsproto.OpBinary, "\x01\x02")
	msg, viol := feed(t, &fs, true, wsproto.OpContinuation, "\x03")
	if viol != nil || msg == nil {
		t.Fatalf("msg=%v viol=%v", msg, viol)
	}
	if msg.Opcode != wsproto.OpBinary {
		t.Errorf("opcode = %v, want binary", msg.Opcode)
	}
}

func TestFragmentWholeMessagePassthrough(t *testing.T) {
	var fs fragmentState
	msg, viol := feed(t, &fs, true, wsproto.OpText, "whole")
	if viol != nil || msg == nil || string(msg.Payload) != "whole" {
		t.Fatalf("msg=%v viol=%v", msg, viol)
	}
	if fs.active {
		t.Error("whole message must not open a fragment")
	}
}

func TestFragmentContinuationWithoutStart(t *testing.T) {
	var fs fragmentState
	msg, viol := feed(t, &fs, true, wsproto.OpContinuation, "cd")
	if msg != nil || viol == nil {
		t.Fatalf("msg=%v viol=%v", msg, viol)
	}
	if viol.code != CloseProtocolError {
		t.Errorf("code = %d, want 1002", viol.code)
	}
	if viol.reason != "continuation without starting a fragment" {
		t.Errorf("reason = %q", viol.reason)
	}
}

func TestFragmentStartWhileActive(t *testing.T) {
	var fs fragmentState
	feed(t, &fs, false, wsproto.OpText, "ab")

	for _, fin := range []bool{false, true} {
		msg, viol := feed(t, &fs, fin, wsproto.OpText, "cd")
		if msg != nil || viol == nil {
			t.Fatalf("fin=%v: msg=%v viol=%v", fin, msg, viol)
		}
		if viol.code != CloseProtocolError {
			t.Errorf("fin=%v: code = %d, want 1002", fin, viol.code)
		}
		if viol.reason != "tried to start a fragment without finishing another" {
			t.Errorf("fin=%v: reason = %q", fin, viol.reason)
		}
	}

	// The violation must not corrupt the accumulator.
	if !fs.active {
		t.Error("violation cleared the open fragment")
	}
	msg, viol := feed(t, &fs, true, wsproto.OpContinuation, "ef")
	if viol != nil || msg == nil || string(msg.Payload) != "abef" {
		t.Fatalf("after violation: msg=%v viol=%v", msg, viol)
	}
}

func TestFragmentSizeCap(t *testing.T) {
	fs := fragmentState{max: 8}

	// Whole message over the cap.
	if _, viol := feed(t, &fs, true, wsproto.OpText, "123456789"); viol == nil || viol.code != CloseMessageTooBig {
		t.Fatalf("whole: viol=%v", viol)
	}

	// First fragment over the cap.
	fs.reset()
	if _, viol := feed(t, &fs, false, wsproto.OpText, "123456789"); viol == nil || viol.code != CloseMessageTooBig {
		t.Fatalf("first: viol=%v", viol)
	}

	// Accumulated fragments over the cap.
	fs.reset()
	feed(t, &fs, false, wsproto.OpText, "12345")
	if _, viol := feed(t, &fs, true, wsproto.OpContinuation, "6789a"); viol == nil || viol.code != CloseMessageTooBig {
		t.Fatalf("accumulated: viol=%v", viol)
	}

	// At the cap exactly is fine.
	fs.reset()
	feed(t, &fs, false, wsproto.OpText, "1234")
	msg, viol := feed(t, &fs, true, wsproto.OpContinuation, "5678")
	if viol != nil || msg == nil {
		t.Fatalf("at cap: msg=%v viol=%v", msg, viol)
	}
}

func TestFragmentUnlimitedWhenMaxZero(t *testing.T) {
	var fs fragmentState
	big := make([]byte, 1<<16)
	msg, viol := fs.absorb(&wsproto.Frame{Fin: true, Opcode: wsproto.OpBinary, Payload: big})
	if viol != nil || msg == nil {
		t.Fatalf("msg=%v viol=%v", msg, viol)
	}
}

func TestFragmentReset(t *testing.T) {
	var fs fragmentState
	feed(t, &fs, false, wsproto.OpText, "ab")
	fs.reset()
	if fs.active || fs.buf.Len() != 0 {
		t.Error("reset did not clear state")
	}
	// A fresh message sequence works after reset.
	msg, viol := feed(t, &fs, true, wsproto.OpText, "ok")
	if viol != nil || msg == nil {
		t.Fatalf("after reset: msg=%v viol=%v", msg, viol)
	}
}
