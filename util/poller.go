package util

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"sync"
	"time"
)

// SnapshotPoller fetches snapshots from backends that serve them over HTTP
// and republishes them on the device state topic, so they reach the panels
// the same way pushed snapshots do.
type SnapshotPoller struct {
	Sources   []SnapshotSource `mapstructure:"sources"`
	Frequency int64            `mapstructure:"frequency"`
	Workers   int64            `mapstructure:"workers"`
	Enabled   bool             `mapstructure:"enabled"`

	queue  chan SnapshotSource
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
}

type SnapshotSource struct {
	Url   string `mapstructure:"snapshot_url"`
	Topic string `mapstructure:"topic"`
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

// MakeSnapshotPoller reloads the settings from config, replacing any
// sources from an earlier load.
func (p *SnapshotPoller) MakeSnapshotPoller() {
	var loaded SnapshotPoller
	err := Config.UnmarshalKey("snapshot_poller", &loaded)
	if err != nil {
		Logger.Error().Msgf("Error loading snapshot_poller config: %v", err)
	}
	p.Sources = loaded.Sources
	p.Frequency = loaded.Frequency
	p.Workers = loaded.Workers
	p.Enabled = loaded.Enabled
	if p.Workers < 1 {
		p.Workers = 1
	}
	if p.Frequency < 1 {
		p.Frequency = 1
	}
}

func (p *SnapshotPoller) Start() {
	if !p.Enabled || len(p.Sources) == 0 {
		Logger.Debug().Msg("snapshot poller disabled")
		return
	}
	p.queue = make(chan SnapshotSource, p.Workers*4)
	p.stop = make(chan struct{})
	for i := 0; i < int(p.Workers); i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			poll_worker(p.queue)
		}()
	}
	p.ticker = time.NewTicker(time.Duration(p.Frequency) * time.Second)
	go func() {
		defer close(p.queue)
		for {
			select {
			case <-p.stop:
				return
			case <-p.ticker.C:
				for _, s := range p.Sources {
					select {
					case p.queue <- s:
					default:
						Logger.Warn().Msgf("poll queue full, skipping %s", s.Url)
					}
				}
			}
		}
	}()
}

// Stop halts polling and waits for in-flight fetches.
func (p *SnapshotPoller) Stop() {
	if p.stop == nil {
		return
	}
	p.ticker.Stop()
	close(p.stop)
	p.wg.Wait()
	p.stop = nil
}

func poll_worker(jobs <-chan SnapshotSource) {
	for job := range jobs {
		process_job(job)
	}
}

func process_job(job SnapshotSource) {
	req, err := http.NewRequest("GET", job.Url, nil)
	if err != nil {
		Logger.Warn().Msgf("Unable to get snapshot from %v: %v", job.Url, err.Error())
		return
	}
	req.Header.Set("Accept", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		Logger.Warn().Msgf("Unable to get snapshot from %v: %v", job.Url, err.Error())
		return
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			Logger.Error().Msgf("Error closing response body: %v", closeErr)
		}
	}()
	if resp.StatusCode > 299 || resp.StatusCode < 200 {
		Logger.Warn().Msgf("non-2xx code received from snapshot source: %d", resp.StatusCode)
		return
	}
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt != "application/json" {
		Logger.Warn().Msgf("Invalid snapshot mimetype for %v: %v", job.Url, resp.Header.Get("Content-Type"))
		return
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		Logger.Warn().Msgf("Error reading snapshot from %v: %v", job.Url, err)
		return
	}
	if !json.Valid(body) {
		Logger.Warn().Msgf("Snapshot from %v is not valid JSON", job.Url)
		return
	}
	token := Client.Publish(job.Topic, byte(0), false, body)
	token.Wait()
}
