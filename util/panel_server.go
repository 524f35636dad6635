package util

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// PanelServer serves the web panels. It can be restarted in place when the
// configured port changes.
type PanelServer struct {
	running *sync.Mutex
	mux     *http.ServeMux
	srv     *http.Server
	srvMu   sync.RWMutex
	addr    func() string
}

func NewPanelServer() *PanelServer {
	return &PanelServer{
		running: &sync.Mutex{},
		mux:     http.NewServeMux(),
		srv:     &http.Server{},
		addr: func() string {
			return fmt.Sprintf(":%d", Config.GetInt("panel_port"))
		},
	}
}

func (s *PanelServer) Handler() http.Handler {
	return s.mux
}

func (s *PanelServer) Start() error {
	if !s.running.TryLock() {
		return fmt.Errorf("already running")
	}
	s.running.Unlock()
	started := make(chan struct{})
	go func() {
		s.running.Lock()
		newSrv := &http.Server{
			Addr:              s.addr(),
			Handler:           s.mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		s.srvMu.Lock()
		s.srv = newSrv
		s.srvMu.Unlock()
		close(started)

		Logger.Info().Msgf("panel server listening on %s", newSrv.Addr)
		if err := newSrv.ListenAndServe(); err != http.ErrServerClosed {
			Logger.Warn().Msgf("Problem loading panel server: %v", err)
		}
		Logger.Debug().Msg("panel server shutdown")
		s.running.Unlock()
	}()
	<-started
	return nil
}

func (s *PanelServer) AddHandler(path string, handler func(http.ResponseWriter, *http.Request)) {
	s.mux.HandleFunc(path, handler)
}

func (s *PanelServer) AddRawHandler(path string, handler http.Handler) {
	s.mux.Handle(path, handler)
}

// Shutdown stops the server and waits for it to finish.
func (s *PanelServer) Shutdown(ctx context.Context) error {
	if s.running.TryLock() {
		s.running.Unlock()
		return nil
	}
	s.srvMu.RLock()
	currentSrv := s.srv
	s.srvMu.RUnlock()
	if err := currentSrv.Shutdown(ctx); err != nil {
		return err
	}
	s.running.Lock() // released by the serving goroutine
	s.running.Unlock()
	return nil
}

func (s *PanelServer) Restart() {
	Logger.Debug().Msg("restarting panel server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		Logger.Error().Msgf("Error shutting down panel server: %v", err)
	}
	if err := s.Start(); err != nil {
		Logger.Error().Msgf("Error starting panel server: %v", err)
	}
}
