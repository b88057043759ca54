package board

import "fmt"

// Redis key pattern helpers
//
// All keys and Pub/Sub channels are namespaced by instance name so that
// multiple flowboard instances can coexist on a single Redis server.
//
// Key pattern: flowboard:{instance_name}:{entity}:{feature_id}
// Channel pattern: flowboard:{instance_name}:board_events

// BoardKey returns the Redis key for a live Board.
// Pattern: flowboard:{instance_name}:board:{feature_id}
func BoardKey(instanceName, featureID string) string {
	return fmt.Sprintf("flowboard:%s:board:%s", instanceName, featureID)
}

// ArchivedBoardKey returns the Redis key for an archived (frozen) Board.
// Pattern: flowboard:{instance_name}:archived:{feature_id}
func ArchivedBoardKey(instanceName, featureID string) string {
	return fmt.Sprintf("flowboard:%s:archived:%s", instanceName, featureID)
}

// BoardIndexKey returns the Redis key for the set of live feature IDs.
// Pattern: flowboard:{instance_name}:boards
func BoardIndexKey(instanceName string) string {
	return fmt.Sprintf("flowboard:%s:boards", instanceName)
}

// ArchiveIndexKey returns the Redis key for the set of archived feature IDs.
// Pattern: flowboard:{instance_name}:archive
func ArchiveIndexKey(instanceName string) string {
	return fmt.Sprintf("flowboard:%s:archive", instanceName)
}

// BoardEventsChannel returns the Pub/Sub channel name for board events.
// Every committed mutation publishes one event here.
// Pattern: flowboard:{instance_name}:board_events
func BoardEventsChannel(instanceName string) string {
	return fmt.Sprintf("flowboard:%s:board_events", instanceName)
}
