package main

import (
	"flag"
	"io"
	"reflect"
	"testing"
)

func newTestFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Int("n", 20, "")
	fs.Bool("read-only", false, "")
	fs.String("listen", "", "")
	return fs
}

func TestNormalizeArgsFlagsAfterPositional(t *testing.T) {
	fs := newTestFlagSet()
	got := normalizeArgs(fs, []string{"pos", "-n", "5"})
	want := []string{"-n", "5", "pos"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeArgsBoolFlagTakesNoValue(t *testing.T) {
	fs := newTestFlagSet()
	got := normalizeArgs(fs, []string{"--read-only", "pos"})
	want := []string{"--read-only", "pos"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeArgsEqualsForm(t *testing.T) {
	fs := newTestFlagSet()
	got := normalizeArgs(fs, []string{"pos", "--listen=127.0.0.1:9000"})
	want := []string{"--listen=127.0.0.1:9000", "pos"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeArgsDoubleDashStopsParsing(t *testing.T) {
	fs := newTestFlagSet()
	got := normalizeArgs(fs, []string{"-n", "5", "--", "-not-a-flag"})
	want := []string{"-n", "5", "-not-a-flag"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
