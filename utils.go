package shiftwyse

import (
	"fmt"
	"strings"
)

// Partitions are namespaced subtrees of the document store:
//
//	artifacts/<appID>/users/<ownerID>/<kind>   private, per user
//	artifacts/<appID>/public/<kind>            shared realm
//
// Every record is routed through exactly one partition; the owner segment
// is the isolation boundary between users.

func ComposeUserPartition(appID, ownerID, kind string) string {
	return fmt.Sprintf("artifacts/%s/users/%s/%s", appID, ownerID, kind)
}

func ComposePublicPartition(appID, kind string) string {
	return fmt.Sprintf("artifacts/%s/public/%s", appID, kind)
}

// ParsePartition splits a partition path into its app id, owner id and
// resource kind. Public partitions yield an empty owner id.
func ParsePartition(partition string) (appID, ownerID, kind string, err error) {
	parts := strings.Split(partition, "/")
	if len(parts) < 4 || parts[0] != "artifacts" {
		return "", "", "", fmt.Errorf("invalid partition: %s", partition)
	}
	switch parts[2] {
	case "users":
		if len(parts) != 5 || parts[3] == "" {
			return "", "", "", fmt.Errorf("invalid user partition: %s", partition)
		}
		return parts[1], parts[3], parts[4], nil
	case "public":
		if len(parts) != 4 {
			return "", "", "", fmt.Errorf("invalid public partition: %s", partition)
		}
		return parts[1], "", parts[3], nil
	default:
		return "", "", "", fmt.Errorf("unknown partition realm: %s", parts[2])
	}
}

// IsPublicPartition reports whether the partition belongs to the shared
// realm.
func IsPublicPartition(partition string) bool {
	parts := strings.Split(partition, "/")
	return len(parts) == 4 && parts[0] == "artifacts" && parts[2] == "public"
}
