package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/harrisonrobin/floaat/pkg/config"
	"github.com/harrisonrobin/floaat/pkg/engine"
	"github.com/harrisonrobin/floaat/pkg/logsink"
)

// session is an engine wired to both services, logging to the terminal
// and the log file.
type session struct {
	cfg     *config.Config
	clients *Clients
	engine  *engine.Orchestrator
	file    *logsink.File
}

func newSession(ctx context.Context) (*session, error) {
	cfg, err := loadCredentials()
	if err != nil {
		return nil, err
	}
	settle, err := cfg.Settle()
	if err != nil {
		return nil, err
	}
	lockPath, err := cfg.LockPath()
	if err != nil {
		return nil, err
	}
	clients, err := deps.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	sinks := logsink.Multi{logsink.NewTerminal(deps.Stdout)}
	s := &session{cfg: cfg, clients: clients}
	if path, err := cfg.LogPath(); err != nil {
		log.Printf("Warning: not writing a log file: %v", err)
	} else {
		s.file = logsink.NewFile(path)
		sinks = append(sinks, s.file)
	}

	o := engine.New(clients.Float, clients.Toggl, sinks)
	o.SettleDelay = settle
	if cfg.MigrationWindowMonths > 0 {
		o.MigrationMonths = cfg.MigrationWindowMonths
	}
	if cfg.BackfillWindowDays > 0 {
		o.BackfillDays = cfg.BackfillWindowDays
	}
	o.Now = deps.Now
	o.LockPath = lockPath
	s.engine = o
	return s, nil
}

func (s *session) Close() {
	if s.file != nil {
		_ = s.file.Close()
	}
}
