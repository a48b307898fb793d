package network

import (
	"log"
	"sync/atomic"

	"github.com/pstepanovum/minecraft-classic-sub002/internal/mesh"
)

// Sender is the outbound half of a session, satisfied by *Server.
type Sender interface {
	Send(msgType MessageType, payload any) error
}

// SceneStream turns scene mutations into wire messages. Each added batch set
// gets a monotonically increasing id that the matching removal echoes, so
// the client can retire exactly the geometry that was published.
type SceneStream struct {
	sender   Sender
	compress bool
	logger   *log.Logger
	next     atomic.Uint64
}

func NewSceneStream(sender Sender, compress bool, logger *log.Logger) *SceneStream {
	if logger == nil {
		logger = log.New(log.Writer(), "scene ", log.LstdFlags|log.Lmicroseconds)
	}
	return &SceneStream{sender: sender, compress: compress, logger: logger}
}

func (s *SceneStream) Add(set *mesh.BatchSet) mesh.Handle {
	id := s.next.Add(1)
	msg := BatchesAdded{
		ID:     id,
		ChunkX: set.ChunkX,
		ChunkY: set.ChunkY,
		ChunkZ: set.ChunkZ,
	}
	for _, batch := range set.Batches {
		wire := InstanceBatch{Block: batch.Block, Count: len(batch.Instances)}
		if s.compress {
			payload, err := CompressInstances(batch.Instances)
			if err != nil {
				s.logger.Printf("compress batch %d/%d: %v, sending inline", id, batch.Block, err)
				wire.Positions = flatten(batch.Instances)
			} else {
				wire.Compressed = payload
			}
		} else {
			wire.Positions = flatten(batch.Instances)
		}
		msg.Batches = append(msg.Batches, wire)
	}
	if err := s.sender.Send(MessageBatchesAdded, msg); err != nil {
		s.logger.Printf("send batchesAdded %d: %v", id, err)
	}
	return id
}

func (s *SceneStream) Remove(handle mesh.Handle) {
	id, ok := handle.(uint64)
	if !ok {
		return
	}
	if err := s.sender.Send(MessageBatchesRemoved, BatchesRemoved{ID: id}); err != nil {
		s.logger.Printf("send batchesRemoved %d: %v", id, err)
	}
}

func flatten(instances []mesh.Instance) []float64 {
	out := make([]float64, 0, len(instances)*3)
	for _, inst := range instances {
		out = append(out, inst.X, inst.Y, inst.Z)
	}
	return out
}
