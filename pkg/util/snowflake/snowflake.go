package snowflake

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
	nodeID   int64 = 1
)

// Init configures the generator node. Call once at startup; machineID
// must be unique per instance in a multi-node deployment (0-1023).
func Init(machineID int64) {
	nodeOnce.Do(func() {
		if machineID < 0 || machineID > 1023 {
			zap.L().Warn("invalid snowflake machine id, using default 1", zap.Int64("machineID", machineID))
			machineID = 1
		}
		nodeID = machineID
		var err error
		node, err = snowflake.NewNode(machineID)
		if err != nil {
			zap.L().Fatal("snowflake node init failed", zap.Error(err))
		}
	})
}

// GenerateID returns a new snowflake id.
func GenerateID() int64 {
	if node == nil {
		Init(nodeID)
	}
	return node.Generate().Int64()
}

// GenerateIDString returns a new snowflake id as a string.
// String form avoids precision loss in JavaScript clients.
func GenerateIDString() string {
	if node == nil {
		Init(nodeID)
	}
	return node.Generate().String()
}
