package server

import (
	"feedwords/models"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Broadcaster fans analysis events out to connected SSE clients
type Broadcaster struct {
	sync.RWMutex
	analysisClients map[string]chan models.AnalysisEvent
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		analysisClients: make(map[string]chan models.AnalysisEvent),
	}
}

// BroadcastAnalysis never blocks, clients with a full channel miss the event
func (b *Broadcaster) BroadcastAnalysis(event models.AnalysisEvent) {
	b.RLock()
	defer b.RUnlock()

	for id, client := range b.analysisClients {
		select {
		case client <- event: // Non-blocking send
		default:
			log.Warnf("Client channel full, skipping analysis event for client: %v", id)
		}
	}
}

// Function to add a client to the broadcaster
func (b *Broadcaster) AddClient(key string, analysisClient chan models.AnalysisEvent) {
	b.Lock()
	defer b.Unlock()
	b.analysisClients[key] = analysisClient
	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.analysisClients),
	}).Info("Adding client to broadcaster")
}

// RemoveClient closes the client's channel. Unknown keys are ignored.
func (b *Broadcaster) RemoveClient(key string) {
	b.Lock()
	defer b.Unlock()

	client, ok := b.analysisClients[key]
	if !ok {
		return
	}
	close(client)
	delete(b.analysisClients, key)

	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.analysisClients),
	}).Info("Removed client from broadcaster")
}

func (b *Broadcaster) ClientCount() int {
	b.RLock()
	defer b.RUnlock()
	return len(b.analysisClients)
}

// Shutdown disconnects every client
func (b *Broadcaster) Shutdown() {
	log.Info("Shutting down broadcaster")
	b.Lock()
	defer b.Unlock()
	for key, client := range b.analysisClients {
		close(client)
		delete(b.analysisClients, key)
	}
}
