package util

import (
	"net"
	"testing"
)

// TestFormatCurrency 测试货币格式化
func TestFormatCurrency(t *testing.T) {
	cases := map[float64]string{
		0:          "$0",
		999:        "$999",
		1000:       "$1,000",
		145000:     "$145,000",
		1234567.5:  "$1,234,567.50",
		-52000.256: "-$52,000.26",
		1e7:        "$10,000,000",
		0.5:        "$0.50",
	}
	for in, want := range cases {
		if got := FormatCurrency(in); got != want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", in, got, want)
		}
	}
}

// TestFormatPercent 测试百分比格式化
func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(33.333); got != "33.3%" {
		t.Errorf("FormatPercent = %q", got)
	}
	if got := FormatPercent(100); got != "100%" {
		t.Errorf("FormatPercent = %q", got)
	}
	if got := FormatPercent(12.25); got != "12.3%" {
		t.Errorf("FormatPercent = %q", got)
	}
}

// TestProgressBar 测试进度条
func TestProgressBar(t *testing.T) {
	if got := ProgressBar(50, 10); got != "[#####-----]" {
		t.Errorf("ProgressBar(50) = %q", got)
	}
	if got := ProgressBar(150, 4); got != "[####]" {
		t.Errorf("ProgressBar(150) = %q", got)
	}
}

// TestFindAvailablePort 测试端口被占用时向后查找
func TestFindAvailablePort(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	defer ln.Close()
	busy := ln.Addr().(*net.TCPAddr).Port

	port, err := FindAvailablePort(busy, 20)
	if err != nil {
		t.Fatalf("FindAvailablePort: %v", err)
	}
	if port == busy {
		t.Errorf("returned busy port %d", busy)
	}
	if _, err := FindAvailablePort(busy, 1); err == nil {
		t.Errorf("expected error when only port %d is tried", busy)
	}
}
