package fixture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	f, err := Parse([]byte("product_type: HWE-P1\nserial: 3c39e7aabbcc\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if f.Name != "HWE-P1-3c39e7aabbcc" {
		t.Errorf("Name = %q", f.Name)
	}
	if f.ProductName != "HWE-P1" {
		t.Errorf("ProductName = %q", f.ProductName)
	}
	if f.FirmwareVersion != "1.00" {
		t.Errorf("FirmwareVersion = %q", f.FirmwareVersion)
	}
	if f.APIVersion != "v1" {
		t.Errorf("APIVersion = %q", f.APIVersion)
	}
	if !f.Enabled() {
		t.Error("Enabled() should default to true")
	}
	if f.Port != 0 {
		t.Errorf("Port = %d", f.Port)
	}
}

func TestParseFull(t *testing.T) {
	payload := `
name: energysocket-AABBCC
product_name: Energy Socket
product_type: HWE-SKT
serial: 5c2faf0011aa
firmware_version: "4.07"
api_version: v1
api_enabled: false
port: 8080
data:
  active_power_w: 120.5
  total_power_import_kwh: 30.511
state:
  power_on: true
  switch_lock: false
  brightness: 255
system:
  cloud_enabled: false
jitter_pct: 5
`
	f, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if f.Name != "energysocket-AABBCC" {
		t.Errorf("Name = %q", f.Name)
	}
	if f.Enabled() {
		t.Error("Enabled() = true, want false")
	}
	if f.Port != 8080 {
		t.Errorf("Port = %d", f.Port)
	}
	if f.Data["active_power_w"] != 120.5 {
		t.Errorf("data active_power_w = %v", f.Data["active_power_w"])
	}
	if f.State["power_on"] != true {
		t.Errorf("state power_on = %v", f.State["power_on"])
	}
	if f.JitterPct != 5 {
		t.Errorf("JitterPct = %v", f.JitterPct)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"bad yaml", "a: [unclosed", "failed to parse YAML"},
		{"missing product type", "serial: abc\n", "product_type is required"},
		{"missing serial", "product_type: HWE-P1\n", "serial is required"},
		{"port out of range", "product_type: HWE-P1\nserial: abc\nport: 70000\n", "port 70000 out of range"},
		{"jitter out of range", "product_type: HWE-P1\nserial: abc\njitter_pct: 80\n", "jitter_pct 80 out of range"},
		{"negative jitter", "product_type: HWE-P1\nserial: abc\njitter_pct: -1\n", "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.payload))
			if err == nil {
				t.Fatal("Parse should fail")
			}
			le, ok := err.(*LoadError)
			if !ok {
				t.Fatalf("error is %T, want *LoadError", err)
			}
			if !strings.Contains(le.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", le.Error(), tt.want)
			}
		})
	}
}

func TestLoadFileSetsPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "socket.yaml")
	if err := os.WriteFile(path, []byte("product_type: HWE-SKT\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load should fail on missing serial")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not name the file", err.Error())
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"p1.yaml":      "product_type: HWE-P1\nserial: serial-p1\n",
		"socket.yml":   "product_type: HWE-SKT\nserial: serial-skt\n",
		"ignored.json": `{"product_type":"HWE-WTR","serial":"nope"}`,
		"notes.txt":    "not a fixture",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	fixtures, err := LoadDirectory(dir)
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(fixtures) != 2 {
		t.Fatalf("loaded %d fixtures, want 2", len(fixtures))
	}
}

func TestLoadDirectoryDuplicateSerial(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("product_type: HWE-P1\nserial: same\n"), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	_, err := LoadDirectory(dir)
	if err == nil {
		t.Fatal("LoadDirectory should reject duplicate serials")
	}
	if !strings.Contains(err.Error(), "serial same already defined") {
		t.Errorf("error = %q", err.Error())
	}
}
