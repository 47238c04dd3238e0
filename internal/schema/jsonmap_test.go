package schema

import "testing"

func TestJSONMapValueScan(t *testing.T) {
	in := JSONMap{"active": " chop ", "totalLevel": 12}
	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var out JSONMap
	if err := out.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if GetString(out, "active") != "chop" || GetInt(out, "totalLevel") != 12 {
		t.Fatalf("out=%v", out)
	}
	if GetInt(in, "totalLevel") != 12 {
		t.Fatalf("int before round trip lost")
	}
}

func TestJSONMapScanEdgeCases(t *testing.T) {
	cases := []struct {
		name    string
		value   any
		wantErr bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"empty bytes", []byte("  "), false},
		{"int", 42, true},
		{"broken json", "{", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var m JSONMap
			err := m.Scan(tc.value)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err=%v, wantErr=%v", err, tc.wantErr)
			}
			if !tc.wantErr && m == nil {
				t.Fatalf("want empty map, got nil")
			}
		})
	}
}

func TestNilJSONMap(t *testing.T) {
	var m JSONMap
	if v, err := m.Value(); err != nil || v != "{}" {
		t.Fatalf("Value=%v err=%v", v, err)
	}
	if GetString(m, "x") != "" || GetInt(m, "x") != 0 {
		t.Fatalf("nil map getters should be zero")
	}
}
