package shiftwyse

import "testing"

func TestPartitionRoundTrip(t *testing.T) {
	partition := ComposeUserPartition("demo-app", "user-1", "chats")
	if partition != "artifacts/demo-app/users/user-1/chats" {
		t.Fatalf("unexpected partition: %s", partition)
	}

	appID, ownerID, kind, err := ParsePartition(partition)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if appID != "demo-app" || ownerID != "user-1" || kind != "chats" {
		t.Fatalf("round trip mismatch: %s %s %s", appID, ownerID, kind)
	}
	if IsPublicPartition(partition) {
		t.Fatalf("user partition reported as public")
	}
}

func TestPublicPartition(t *testing.T) {
	partition := ComposePublicPartition("demo-app", "mentorProfiles")
	if !IsPublicPartition(partition) {
		t.Fatalf("public partition not recognized: %s", partition)
	}

	appID, ownerID, kind, err := ParsePartition(partition)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if appID != "demo-app" || ownerID != "" || kind != "mentorProfiles" {
		t.Fatalf("unexpected parse: %s %q %s", appID, ownerID, kind)
	}
}

func TestParsePartitionRejectsMalformed(t *testing.T) {
	for _, partition := range []string{
		"",
		"artifacts",
		"artifacts/app",
		"artifacts/app/private/x",
		"artifacts/app/users//chats",
		"other/app/public/chats",
	} {
		if _, _, _, err := ParsePartition(partition); err == nil {
			t.Fatalf("expected error for %q", partition)
		}
	}
}
