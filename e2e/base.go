package e2e

import (
	"log/slog"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"

	"safespace/history"
	"safespace/observability"
	"safespace/pipeline"
	"safespace/repositories"
	"safespace/rules"
	"safespace/search"
	"safespace/services"
	"safespace/session"
	"safespace/toxicity"
)

// BaseSuite wires a shared store plus fully assembled clients, the way a
// browser would host several tabs against the same origin storage.
type BaseSuite struct {
	suite.Suite
	Config Config
	Store  repositories.IBlobStore
	DB     *badger.DB
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

func (s *BaseSuite) SetupTest() {
	db, err := badger.Open(badger.DefaultOptions(s.T().TempDir()).
		WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = db.Close() })

	s.DB = db
	s.Store = repositories.NewBadgerBlobStore(db, slog.Default())
}

func (s *BaseSuite) PollInterval() time.Duration {
	interval, err := time.ParseDuration(s.Config.PollInterval)
	s.Require().NoError(err)
	return interval
}

// Client bundles one simulated tab: its own session, pipeline, synchronizer
// and index, all sharing the suite's store.
type Client struct {
	Session session.Session
	Chat    *services.ChatService
	Sync    *history.Synchronizer
	Loader  *toxicity.Loader
	Stats   *observability.MonitoringManager
}

func (s *BaseSuite) NewClient(name, clientID string) *Client {
	log := slog.Default()

	engine, err := rules.NewEngine(log)
	s.Require().NoError(err)

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(s.T().TempDir()))
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = writer.Close() })

	loader := toxicity.NewLoader(log, s.Config.ToxicityThreshold)
	sess := session.Session{Name: name}
	sync := history.NewSynchronizer(log, s.Store, history.DefaultLogKey,
		clientID, history.ModeOptimistic, s.Config.AppendRetries)
	stats := observability.NewMonitoringManager(log)

	chat := services.NewChatService(
		log,
		sess,
		pipeline.NewValidator(log, engine, loader),
		sync,
		search.NewMessageIndex(writer, log, nil),
		stats,
	)
	return &Client{Session: sess, Chat: chat, Sync: sync, Loader: loader, Stats: stats}
}

// Step prints a colorized header so scenario logs read like a script.
func (s *BaseSuite) Step(name string) {
	s.T().Log(color.New(color.BgBlack, color.FgGreen).Render("  ====== " + name + " ======"))
}
