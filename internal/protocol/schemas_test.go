package protocol_test

import (
	"testing"

	"gridrealm.ai/internal/protocol"
)

func TestDecodeIntent_Valid(t *testing.T) {
	cases := []string{
		`{"type":"INTENT","protocol_version":"1.0","req_id":"r1","intent":"MOVE","character_id":"C1","tile":[3,4]}`,
		`{"type":"INTENT","protocol_version":"1.0","req_id":"r2","intent":"MARK","character_id":"C1","tile":[0,0]}`,
		`{"type":"INTENT","protocol_version":"1.0","req_id":"r3","intent":"TASK","character_id":"C1","task":"mining","resource":"copper_rock"}`,
		`{"type":"INTENT","protocol_version":"1.0","req_id":"r4","intent":"STOP","character_id":"C1"}`,
		`{"type":"INTENT","protocol_version":"1.0","req_id":"r5","intent":"UPGRADE","upgrade_id":"sharpen"}`,
		`{"type":"INTENT","protocol_version":"1.0","req_id":"r6","intent":"SWITCH","character_id":"C2"}`,
	}
	for _, raw := range cases {
		if _, err := protocol.DecodeIntent([]byte(raw)); err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
	}

	msg, err := protocol.DecodeIntent([]byte(cases[0]))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Intent != protocol.IntentMove || msg.Tile == nil || *msg.Tile != [2]int{3, 4} {
		t.Fatalf("decoded %+v", msg)
	}
}

func TestDecodeIntent_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing tile":       `{"type":"INTENT","protocol_version":"1.0","req_id":"r1","intent":"MOVE","character_id":"C1"}`,
		"unknown intent":     `{"type":"INTENT","protocol_version":"1.0","req_id":"r1","intent":"FLY"}`,
		"negative tile":      `{"type":"INTENT","protocol_version":"1.0","req_id":"r1","intent":"MARK","character_id":"C1","tile":[-1,2]}`,
		"unknown task":       `{"type":"INTENT","protocol_version":"1.0","req_id":"r1","intent":"TASK","character_id":"C1","task":"dancing"}`,
		"extra field":        `{"type":"INTENT","protocol_version":"1.0","req_id":"r1","intent":"STOP","character_id":"C1","x":1}`,
		"upgrade without id": `{"type":"INTENT","protocol_version":"1.0","req_id":"r1","intent":"UPGRADE"}`,
		"not json":           `{`,
	}
	for name, raw := range cases {
		if _, err := protocol.DecodeIntent([]byte(raw)); err == nil {
			t.Fatalf("%s: expected rejection", name)
		}
	}
}
