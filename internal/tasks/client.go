package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// Cleaners are the stores the maintenance queues sweep.
type Cleaners struct {
	Audit  AuditEventCleaner
	Shares OrphanSharesCleaner
}

// Client owns the maintenance queues: the audit retention sweep
// (cleanup_audit_events) and the orphaned share sweep
// (cleanup_orphan_shares). Both are registered when the client is built,
// so Enqueue accepts either task type right away.
type Client struct {
	backlite *backlite.Client
	conn     *sql.DB
	workers  int

	mu      sync.Mutex
	running bool
}

// QueueDBPath returns the SQLite file holding queued tasks for the main
// database at mainDBPath, e.g. "data/snipsnap.db" -> "data/snipsnap-tasks.db".
func QueueDBPath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return strings.TrimSuffix(mainDBPath, ext) + "-tasks" + ext
}

// NewClient opens the queue database next to mainDBPath, installs the
// backlite schema and registers the maintenance queues against cleaners.
func NewClient(mainDBPath string, cfg Config, cleaners Cleaners) (*Client, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	conn, err := openQueueDB(QueueDBPath(mainDBPath), cfg.Workers)
	if err != nil {
		return nil, err
	}

	bl, err := backlite.NewClient(backlite.ClientConfig{
		DB:              conn,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          queueLogger{},
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create task queue: %w", err)
	}
	if err := bl.Install(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("install task queue schema: %w", err)
	}

	bl.Register(NewCleanupAuditEventsQueue(cleaners.Audit))
	bl.Register(NewCleanupOrphanSharesQueue(cleaners.Shares))

	return &Client{backlite: bl, conn: conn, workers: cfg.Workers}, nil
}

// openQueueDB opens a WAL-mode SQLite pool sized for the worker count.
// The queue never shares a pool with the gorm database.
func openQueueDB(path string, workers int) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open task queue database: %w", err)
	}
	conn.SetMaxOpenConns(workers + 5)
	conn.SetMaxIdleConns(workers + 2)
	conn.SetConnMaxLifetime(time.Hour)
	return conn, nil
}

// Start launches the workers. Calling it twice is a no-op.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	log.Printf("Maintenance queue started with %d workers", c.workers)
	c.backlite.Start(ctx)
}

// Enqueue saves a single task and returns its id.
func (c *Client) Enqueue(task backlite.Task) (string, error) {
	ids, err := c.backlite.Add(task).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", task.Config().Name, err)
	}
	return ids[0], nil
}

// Shutdown waits for running tasks until ctx expires, then closes the
// queue database. It reports whether every worker finished in time.
func (c *Client) Shutdown(ctx context.Context) bool {
	c.mu.Lock()
	running := c.running
	c.running = false
	c.mu.Unlock()

	drained := true
	if running {
		drained = c.backlite.Stop(ctx)
		if !drained {
			log.Println("Maintenance queue stopped before all tasks finished")
		}
	}

	if err := c.conn.Close(); err != nil {
		log.Printf("Error closing task queue database: %v", err)
	}
	return drained
}

// queueLogger routes backlite's messages through the standard logger.
type queueLogger struct{}

func (queueLogger) Info(message string, params ...any) {
	log.Printf("[TASK] "+message, params...)
}

func (queueLogger) Error(message string, params ...any) {
	log.Printf("[TASK ERROR] "+message, params...)
}
