// Package server wires the streaming scheduler, the generation worker and
// the websocket transport into one world server process.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/pstepanovum/minecraft-classic-sub002/internal/block"
	"github.com/pstepanovum/minecraft-classic-sub002/internal/config"
	"github.com/pstepanovum/minecraft-classic-sub002/internal/gen"
	"github.com/pstepanovum/minecraft-classic-sub002/internal/network"
	"github.com/pstepanovum/minecraft-classic-sub002/internal/raycast"
	"github.com/pstepanovum/minecraft-classic-sub002/internal/terrain"
	"github.com/pstepanovum/minecraft-classic-sub002/internal/world"
)

type Server struct {
	cfg      *config.Config
	channel  *gen.Channel
	worker   *gen.Worker
	streamer *world.Streamer
	net      *network.Server
	logger   *log.Logger

	frame uint64

	// Latest observer sample; applied on the observer cadence so a chatty
	// client cannot force a desired-set recompute every frame.
	pendingObserver *network.ObserverUpdate
}

func New(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	logger := log.New(log.Writer(), "world-server ", log.LstdFlags|log.Lmicroseconds)

	channel := gen.NewChannel(cfg.Worker.RequestBuffer, cfg.Worker.ResponseBuffer)
	generator := terrain.NewGenerator(cfg.Terrain, cfg.Chunk.Size, cfg.Chunk.VerticalSections)
	worker := gen.NewWorker(channel, generator, gen.WorkerParams{
		Size:             cfg.Chunk.Size,
		VerticalSections: cfg.Chunk.VerticalSections,
		WorldRadius:      cfg.Chunk.WorldRadius,
	}, logger)

	netSrv := network.NewServer(cfg.Network, network.Welcome{
		ServerID:         cfg.Server.ID,
		Description:      cfg.Server.Description,
		ChunkSize:        cfg.Chunk.Size,
		VerticalSections: cfg.Chunk.VerticalSections,
		WorldRadius:      cfg.Chunk.WorldRadius,
		ViewRadius:       cfg.Chunk.ViewRadius,
		BlockTypes:       block.DefaultDefinitions(),
	}, logger)

	scene := network.NewSceneStream(netSrv, cfg.Network.Compression, logger)
	streamer := world.NewStreamer(cfg, scene, channel, logger)

	return &Server{
		cfg:      cfg,
		channel:  channel,
		worker:   worker,
		streamer: streamer,
		net:      netSrv,
		logger:   logger,
	}, nil
}

// Run drives the frame loop until the context is cancelled. The worker and
// the transport run on their own goroutines; everything that touches the
// scheduler happens here.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.worker.Run(ctx)
	go func() {
		if err := s.net.Run(ctx); err != nil && ctx.Err() == nil {
			s.logger.Printf("network server stopped: %v", err)
			cancel()
		}
	}()

	s.channel.Send(gen.InitRequest{
		ServerConfig: gen.WorldParams{
			ChunkSize:        s.cfg.Chunk.Size,
			VerticalSections: s.cfg.Chunk.VerticalSections,
			WorldRadius:      s.cfg.Chunk.WorldRadius,
		},
		ClientConfig: gen.ClientParams{
			ViewRadius:  s.cfg.Chunk.ViewRadius,
			FrameBudget: s.cfg.Server.FrameBudget,
		},
		Seed:           s.cfg.Terrain.Seed,
		BlockTypeTable: block.DefaultDefinitions(),
	})

	frameRate := s.cfg.Server.FrameRate.Duration()
	if frameRate <= 0 {
		frameRate = 16 * time.Millisecond
	}
	ticker := time.NewTicker(frameRate)
	defer ticker.Stop()

	s.logger.Printf("running as %s, frame %s, budget %d", s.cfg.Server.ID, frameRate, s.cfg.Server.FrameBudget)

	for {
		select {
		case <-ctx.Done():
			s.streamer.FlushEdits()
			return ctx.Err()
		case <-ticker.C:
			s.tick()
		case resp := <-s.channel.Responses():
			s.streamer.HandleResponse(resp)
		case env := <-s.net.Events():
			s.handleEvent(env)
		}
	}
}

func (s *Server) tick() {
	s.frame++
	if s.pendingObserver != nil && s.frame%uint64(s.cfg.Server.ObserverFrameEvery) == 0 {
		obs := s.pendingObserver
		s.pendingObserver = nil
		s.streamer.SetObserverPosition(obs.X, obs.Y, obs.Z)
	}
	s.streamer.Tick()
}

func (s *Server) handleEvent(env network.Envelope) {
	switch env.Type {
	case network.MessageObserver:
		var obs network.ObserverUpdate
		if err := json.Unmarshal(env.Payload, &obs); err != nil {
			s.replyError(fmt.Sprintf("decode observer payload: %v", err))
			return
		}
		s.pendingObserver = &obs

	case network.MessageBlockEdit:
		var edit network.BlockEdit
		if err := json.Unmarshal(env.Payload, &edit); err != nil {
			s.replyError(fmt.Sprintf("decode blockEdit payload: %v", err))
			return
		}
		s.streamer.ApplyBlockEdit(edit.X, edit.Y, edit.Z, edit.Block)

	case network.MessageApplyModifications:
		var batch network.ApplyModifications
		if err := json.Unmarshal(env.Payload, &batch); err != nil {
			s.replyError(fmt.Sprintf("decode applyModifications payload: %v", err))
			return
		}
		for _, edit := range batch.Edits {
			s.streamer.ApplyBlockEdit(edit.X, edit.Y, edit.Z, edit.Block)
		}

	case network.MessageCast:
		var req network.CastRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			s.replyError(fmt.Sprintf("decode cast payload: %v", err))
			return
		}
		s.handleCast(env.Seq, req)

	default:
		s.logger.Printf("ignoring message type %q", env.Type)
	}
}

func (s *Server) handleCast(seq uint64, req network.CastRequest) {
	hit := raycast.Cast(
		raycast.Vec3{X: req.OriginX, Y: req.OriginY, Z: req.OriginZ},
		raycast.Vec3{X: req.DirX, Y: req.DirY, Z: req.DirZ},
		s.streamer,
		req.MaxDistance,
	)
	result := network.CastResult{Seq: seq}
	if hit != nil {
		result.Hit = true
		result.X, result.Y, result.Z = hit.Position[0], hit.Position[1], hit.Position[2]
		result.PrevX, result.PrevY, result.PrevZ = hit.Previous[0], hit.Previous[1], hit.Previous[2]
		result.NormalX, result.NormalY, result.NormalZ = hit.Normal[0], hit.Normal[1], hit.Normal[2]
		result.Block = hit.Block
		result.Distance = hit.Distance
	}
	if err := s.net.Send(network.MessageCastResult, result); err != nil {
		s.logger.Printf("send castResult: %v", err)
	}
}

func (s *Server) replyError(detail string) {
	s.logger.Printf("%s", detail)
	if err := s.net.Send(network.MessageError, network.ErrorMsg{Detail: detail}); err != nil {
		s.logger.Printf("send error: %v", err)
	}
}
