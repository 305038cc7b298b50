package ratelimit

import "testing"

func TestAllowWithinBurst(t *testing.T) {
	l := New()

	for i := 0; i < 3; i++ {
		if !l.Allow("ip1", 3, 1) {
			t.Fatalf("request %d within burst denied", i)
		}
	}
	if l.Allow("ip1", 3, 1) {
		t.Fatal("request beyond burst allowed")
	}
}

func TestAllowKeysIndependent(t *testing.T) {
	l := New()

	for i := 0; i < 3; i++ {
		l.Allow("ip1", 3, 1)
	}
	if !l.Allow("ip2", 3, 1) {
		t.Fatal("second key throttled by first key's usage")
	}
}
