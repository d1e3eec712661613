package utils_test

import (
	"context"
	"fmt"
	"net"
	"reflect"
	"testing"

	"github.com/robertof/go-btinfo/utils"
)

func TestReverse(t *testing.T) {
	in := net.HardwareAddr{0xff, 0xee, 0xdd, 0xcc, 0xbb, 0xaa}
	got := utils.Reverse(in)

	want := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Reverse(%v): got %v, wanted %v", in, got, want)
	}

	if in[0] != 0xff {
		t.Fatalf("Reverse() modified its input: %v", in)
	}

	if got := utils.Reverse([]int{}); len(got) != 0 {
		t.Fatalf("Reverse([]): got %v", got)
	}
}

func TestErrorIsAnyOf(t *testing.T) {
	err := fmt.Errorf("scan: %w", context.Canceled)

	if !utils.ErrorIsAnyOf(err, context.DeadlineExceeded, context.Canceled) {
		t.Fatal("ErrorIsAnyOf() missed a wrapped target")
	}

	if utils.ErrorIsAnyOf(err, context.DeadlineExceeded) {
		t.Fatal("ErrorIsAnyOf() matched an unrelated target")
	}

	if utils.ErrorIsAnyOf(err) {
		t.Fatal("ErrorIsAnyOf() matched without targets")
	}
}

func TestSortedKeys(t *testing.T) {
	cols := map[string]any{
		"updated_at":      "now",
		"lmp_sub_version": 0x4200,
		"name":            "Foo",
	}

	got := utils.SortedKeys(cols)

	want := []string{"lmp_sub_version", "name", "updated_at"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SortedKeys(): got %v, wanted %v", got, want)
	}

	if got := utils.SortedKeys(map[string]int(nil)); len(got) != 0 {
		t.Fatalf("SortedKeys(nil): got %v", got)
	}
}
