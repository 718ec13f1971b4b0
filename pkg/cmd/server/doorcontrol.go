package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	_ "github.com/lib/pq"
	nats "github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AJITHPRASAD95/door1/config"
	"github.com/AJITHPRASAD95/door1/pkg/api"
	"github.com/AJITHPRASAD95/door1/pkg/doorcontrol"
	"github.com/AJITHPRASAD95/door1/pkg/doorcontrol/controlchannel"
	"github.com/AJITHPRASAD95/door1/pkg/metrics"
	"github.com/AJITHPRASAD95/door1/pkg/storage"
	"github.com/AJITHPRASAD95/door1/pkg/storage/memory"
	"github.com/AJITHPRASAD95/door1/pkg/storage/postgres"
)

type doorControlServer struct {
	c *config.Config

	quitCh chan bool
	doneCh chan bool

	nc      *nats.Conn
	db      *sqlx.DB
	sweeper *controlchannel.Sweeper
}

func init() {
	formatter := &logrus.TextFormatter{
		FullTimestamp: true,
	}
	logrus.SetFormatter(formatter)
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}

func newDoorControlServer(c *config.Config) (*doorControlServer, error) {
	s := &doorControlServer{
		c:      c,
		quitCh: make(chan bool),
		doneCh: make(chan bool),
	}

	if level, err := log.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if c.NATSServerURL != "" {
		nc, err := nats.Connect(c.NATSServerURL,
			nats.DrainTimeout(10*time.Second),
			nats.RetryOnFailedConnect(true),
			nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
				log.Error("nats error: ", err)
			}))
		if err != nil {
			return nil, err
		}
		s.nc = nc
	}

	return s, nil
}

// newStore selects the storage backend. The postgres connect is retried
// with exponential backoff so the service survives a database that comes
// up later than the process.
func (s *doorControlServer) newStore() (storage.Interface, error) {
	if s.c.StorageDriver != "postgres" {
		log.Info("Using memory storage backend")
		return memory.NewStore(), nil
	}

	var db *sqlx.DB
	operation := func() error {
		var err error
		db, err = sqlx.Connect("postgres", s.c.DatabaseURL)
		return err
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 10)
	if err := backoff.RetryNotify(operation, policy, func(err error, d time.Duration) {
		log.Warnf("Could not connect to postgres: %v (next attempt in %s)", err, d)
	}); err != nil {
		return nil, err
	}

	s.db = db
	log.Info("Using postgres storage backend")
	return postgres.NewStore(db), nil
}

func (s *doorControlServer) Serve() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(logger())

	store, err := s.newStore()
	if err != nil {
		log.Error("failed to create storage backend: ", err)
		s.doneCh <- true
		return
	}

	// Create the controller owning the session registry and the dispatch
	// engine, and hand it to both handler layers.
	ctrl := controlchannel.NewController(s.nc, store, s.c)

	doorControlHandler := doorcontrol.NewHandler(ctrl)
	doorControlHandler.RegisterRoutes(e)

	apiHandler := api.NewHandler(s.nc, store, ctrl, s.c)
	apiHandler.RegisterRoutes(e)

	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// The sweeper runs on its own cadence, independent of request
	// traffic.
	s.sweeper = controlchannel.NewSweeper(ctrl,
		time.Duration(s.c.SweepInterval)*time.Second,
		time.Duration(s.c.StaleThreshold)*time.Second)
	s.sweeper.Start()

	go func() {
		log.WithFields(log.Fields{
			"host": s.c.BindHost,
			"port": s.c.BindPort,
		}).Info("Starting server")

		if err := e.Start(fmt.Sprintf("%s:%d", s.c.BindHost, s.c.BindPort)); err != nil {
			e.Logger.Info("Shutting down the server")
		}
	}()

	// Wait until receiving the quit signal
	<-s.quitCh
	log.Info("Shutdown signal received")

	s.sweeper.Stop()

	// Create a 10 second timeout context
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown the echo web server
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Error(err)
	}

	if s.db != nil {
		s.db.Close()
	}

	// We've done!
	s.doneCh <- true
}

func (s *doorControlServer) Shutdown() {
	if s.nc != nil {
		s.nc.Drain()
	}

	// Send the quit signal to the Serve() routine
	s.quitCh <- true

	// Wait up to 10 seconds
	select {
	case <-s.doneCh:
		log.Info("Shutdown server successful")
	case <-time.After(10 * time.Second):
		log.Error("Shutdown server failed")
	}
}

// Logger returns a middleware that logs HTTP requests.
func logger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			var err error
			if err = next(c); err != nil {
				c.Error(err)
			}
			stop := time.Now()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = res.Header().Get(echo.HeaderXRequestID)
			}
			errMsg := ""
			if err != nil {
				errMsg = err.Error()
			}

			log.WithFields(log.Fields{
				"id":          id,
				"remote_ip":   c.RealIP(),
				"method":      req.Method,
				"uri":         req.RequestURI,
				"status":      res.Status,
				"status_text": http.StatusText(res.Status),
				"error":       errMsg,
				"bytes_out":   res.Size,
				"latency":     stop.Sub(start).String(),
			}).Infof("%s %s %s %d %s", req.Method, req.RequestURI, req.Proto,
				res.Status, strconv.FormatInt(res.Size, 10))

			return err
		}
	}
}

func RunServeDoorControl(c *config.Config) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		s, err := newDoorControlServer(c)
		if err != nil {
			log.Error("failed to create new server instance: ", err)
			os.Exit(1)
		}

		go s.Serve()

		// Wait for interrupt signal to gracefully shutdown the server
		quitCh := make(chan os.Signal, 1)
		signal.Notify(quitCh, os.Interrupt)
		<-quitCh

		// Shutdown the server
		s.Shutdown()
	}
}
