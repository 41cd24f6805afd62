package main

import (
	"testing"

	"github.com/pawsitive-drive/pawsitive/internal/donation"
)

func TestDonationTarget(t *testing.T) {
	cases := []struct {
		target, pet string
		kind        donation.TargetKind
		ref         string
		wantErr     bool
	}{
		{"general", "", donation.TargetGeneral, "", false},
		{"", "", donation.TargetGeneral, "", false},
		{"Pet", " Bantay ", donation.TargetPet, "Bantay", false},
		{"general", "Bantay", donation.TargetGeneral, "", true},
		{"", "12", donation.TargetGeneral, "", true},
		{"shelter", "", donation.TargetGeneral, "", true},
	}
	for _, tc := range cases {
		kind, ref, err := donationTarget(tc.target, tc.pet)
		if (err != nil) != tc.wantErr {
			t.Fatalf("donationTarget(%q, %q) err = %v", tc.target, tc.pet, err)
		}
		if err == nil && (kind != tc.kind || ref != tc.ref) {
			t.Fatalf("donationTarget(%q, %q) = %v %q", tc.target, tc.pet, kind, ref)
		}
	}
}
