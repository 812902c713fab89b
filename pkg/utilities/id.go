package utilities

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewSessionID generates a globally unique, sortable session identifier
// used as the jti claim of issued tokens.
func NewSessionID() string {
	return ksuid.New().String()
}

// NewJobID generates a snowflake ID string for correlating queued mail
// jobs in logs. The node ID comes from SNOWFLAKE_NODE; node 1 is used
// when the variable is unset or unparsable.
func NewJobID() string {
	nodeID := int64(1)
	if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			nodeID = parsed
		}
	}
	return NewJobIDWithNode(nodeID)
}

// NewJobIDWithNode generates a snowflake ID string using the provided
// node ID, falling back to a KSUID if the node cannot be initialized.
func NewJobIDWithNode(nodeID int64) string {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return ksuid.New().String()
	}
	return node.Generate().String()
}
