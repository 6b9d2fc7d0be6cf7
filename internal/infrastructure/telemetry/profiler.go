package telemetry

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig points continuous profiling at a Pyroscope server
type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string
	ApplicationName string
	Environment     string
}

// Profiler is a pyroscope session. The zero session (profiling disabled) is valid.
type Profiler struct {
	session  *pyroscope.Profiler
	stopOnce sync.Once
	stopErr  error
}

var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
	pyroscope.ProfileMutexCount,
}

func NewProfiler(cfg ProfilerConfig, log *zap.Logger) (*Profiler, error) {
	if !cfg.Enabled {
		return &Profiler{}, nil
	}
	if cfg.ServerAddress == "" || cfg.ApplicationName == "" {
		return nil, errors.New("profiling needs a server address and an application name")
	}

	tags := map[string]string{"version": ServiceVersion}
	if cfg.Environment != "" {
		tags["env"] = cfg.Environment
	}
	if host, err := os.Hostname(); err == nil {
		tags["hostname"] = host
	}
	session, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Logger:          pyroscopeLog{log.Sugar()},
		Tags:            tags,
		ProfileTypes:    profileTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}
	log.Info("Continuous profiling started",
		zap.String("server", cfg.ServerAddress),
		zap.String("application", cfg.ApplicationName),
	)
	return &Profiler{session: session}, nil
}

func (p *Profiler) IsRunning() bool { return p.session != nil }

// Stop flushes the last profiles. Later calls return the first result.
func (p *Profiler) Stop() error {
	p.stopOnce.Do(func() {
		if p.session != nil {
			p.stopErr = p.session.Stop()
			p.session = nil
		}
	})
	return p.stopErr
}

// pyroscopeLog demotes the agent's info chatter to debug
type pyroscopeLog struct{ s *zap.SugaredLogger }

func (l pyroscopeLog) Infof(format string, args ...any)  { l.s.Debugf(format, args...) }
func (l pyroscopeLog) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }
func (l pyroscopeLog) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }
