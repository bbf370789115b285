//go:build linux

package system

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadModelAndChipFrom(t *testing.T) {
	dir := t.TempDir()
	product := filepath.Join(dir, "product_name")
	cpuinfo := filepath.Join(dir, "cpuinfo")
	if err := os.WriteFile(product, []byte("ThinkPad X1 Carbon Gen 11\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	body := "processor\t: 0\nvendor_id\t: GenuineIntel\nmodel name\t: 13th Gen Intel(R) Core(TM) i7-1365U\n"
	if err := os.WriteFile(cpuinfo, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	modelID, chipID := readModelAndChipFrom(product, cpuinfo)
	if modelID != "ThinkPad X1 Carbon Gen 11" {
		t.Errorf("modelID = %q", modelID)
	}
	if chipID != "13th Gen Intel(R) Core(TM) i7-1365U" {
		t.Errorf("chipID = %q", chipID)
	}
}

func TestReadModelAndChipFromMissingFiles(t *testing.T) {
	dir := t.TempDir()
	modelID, chipID := readModelAndChipFrom(filepath.Join(dir, "nope"), filepath.Join(dir, "nope2"))
	if modelID != unknownModel {
		t.Errorf("modelID = %q, want %q", modelID, unknownModel)
	}
	if chipID == "" {
		t.Error("chipID should fall back to uname machine or the unknown marker")
	}
}

func TestReadCPUModelArmBoard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpuinfo")
	body := "processor\t: 0\nBogoMIPS\t: 108.00\n\nHardware\t: BCM2835\nModel\t\t: Raspberry Pi 5 Model B Rev 1.0\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := readCPUModel(path); got != "Raspberry Pi 5 Model B Rev 1.0" {
		t.Fatalf("readCPUModel = %q", got)
	}
}
