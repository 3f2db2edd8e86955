package domain

import "testing"

func TestStatusValidity(t *testing.T) {
	for _, status := range []Status{StatusPending, StatusApproved, StatusRejected, StatusError} {
		if !status.IsValid() {
			t.Fatalf("expected %q to be valid", status)
		}
	}
	if Status("archived").IsValid() {
		t.Fatal("unknown status must not be valid")
	}

	if StatusError.IsAssignable() {
		t.Fatal("error status must not be assignable by admins")
	}
	if !StatusPending.IsAssignable() || !StatusApproved.IsAssignable() || !StatusRejected.IsAssignable() {
		t.Fatal("workflow statuses must be assignable")
	}
}

func TestPermissivePolicyAllowsAnyTransition(t *testing.T) {
	froms := []Status{StatusPending, StatusApproved, StatusRejected, StatusError}
	tos := []Status{StatusPending, StatusApproved, StatusRejected}

	for _, from := range froms {
		for _, to := range tos {
			if !PolicyPermissive.CanTransition(from, to) {
				t.Fatalf("permissive policy rejected %q -> %q", from, to)
			}
		}
	}

	if PolicyPermissive.CanTransition(StatusPending, StatusError) {
		t.Fatal("no policy may assign the error status")
	}
	if PolicyPermissive.AllowedSources(StatusApproved) != nil {
		t.Fatal("permissive policy must not restrict bulk sources")
	}
}

func TestFinalPolicyTreatsTerminalStatesAsFinal(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusError, StatusApproved, true},
		{StatusApproved, StatusRejected, false},
		{StatusRejected, StatusApproved, false},
		{StatusApproved, StatusPending, false},
		{StatusApproved, StatusApproved, true},
		{StatusRejected, StatusRejected, true},
	}

	for _, tc := range cases {
		if got := PolicyFinal.CanTransition(tc.from, tc.to); got != tc.allowed {
			t.Fatalf("final policy %q -> %q: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestFinalPolicyAllowedSources(t *testing.T) {
	sources := PolicyFinal.AllowedSources(StatusRejected)

	want := map[Status]bool{StatusPending: false, StatusError: false, StatusRejected: false}
	for _, s := range sources {
		if _, ok := want[s]; !ok {
			t.Fatalf("unexpected allowed source %q", s)
		}
		want[s] = true
	}
	for s, seen := range want {
		if !seen {
			t.Fatalf("missing allowed source %q", s)
		}
	}

	for _, s := range sources {
		if s == StatusApproved {
			t.Fatal("approved must not be an allowed source for rejection under final policy")
		}
	}
}

func TestHasAttachment(t *testing.T) {
	n := &Nomination{}
	if n.HasAttachment() {
		t.Fatal("empty record must not report an attachment")
	}

	n.FileUploaded = true
	if n.HasAttachment() {
		t.Fatal("fileUploaded without a fileUrl must not report an attachment")
	}

	n.FileURL = "https://bucket.s3.us-west-2.amazonaws.com/uploads/1-a.zip"
	if !n.HasAttachment() {
		t.Fatal("expected attachment to be reported")
	}
}
