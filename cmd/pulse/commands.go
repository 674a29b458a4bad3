package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli"

	"github.com/carverauto/pulse/pkg/db"
	"github.com/carverauto/pulse/pkg/engine"
	"github.com/carverauto/pulse/pkg/models"
	"github.com/carverauto/pulse/pkg/rules"
	"github.com/carverauto/pulse/pkg/state"
)

const clientTimeout = 10 * time.Second

var errUsage = errors.New("usage")

func importRules(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("%w: rules import <file>", errUsage)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	list, err := rules.LoadRuleFile(c.Args().First())
	if err != nil {
		return err
	}

	ctx := context.Background()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}

	defer closeLogged("database", database.Close)

	created, updated, err := rules.Import(ctx, rules.NewSQLiteStore(database), list)
	if err != nil {
		return fmt.Errorf("import stopped after %d created, %d updated: %w", created, updated, err)
	}

	log.Printf("Imported %d rules from %s (%d created, %d updated)", len(list), c.Args().First(), created, updated)

	return nil
}

// forceState writes the state straight into redis when the engine shares
// one, and goes through the running engine's API otherwise.
func forceState(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("%w: state force <IDLE|ACTIVE|ALERT>", errUsage)
	}

	target := models.MonitoringState(strings.ToUpper(c.Args().First()))
	if !target.Valid() {
		return fmt.Errorf("%w: %s", state.ErrInvalidState, c.Args().First())
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	reason := c.String("reason")

	if cfg.Redis != nil && c.String("addr") == "" {
		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}

		defer closeLogged("store", store.Close)

		machine := state.NewMachine(store, cfg.Monitoring.Model())
		if err := machine.ForceState(ctx, target, reason); err != nil {
			return err
		}

		log.Printf("Monitoring state forced to %s", target)

		return nil
	}

	base := c.String("addr")
	if base == "" {
		base = baseURL(cfg)
	}

	got, err := postForceState(ctx, http.DefaultClient, base, target, reason)
	if err != nil {
		return err
	}

	log.Printf("Monitoring state is now %s", got)

	return nil
}

// baseURL turns listen_addr into a URL for the local host.
func baseURL(cfg *engine.Config) string {
	host, port, err := net.SplitHostPort(cfg.ListenAddr)
	if err != nil {
		return "http://" + cfg.ListenAddr
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}

	return "http://" + net.JoinHostPort(host, port)
}

func postForceState(ctx context.Context, client *http.Client, base string,
	target models.MonitoringState, reason string) (models.MonitoringState, error) {
	body, err := json.Marshal(map[string]string{"state": string(target), "reason": reason})
	if err != nil {
		return "", err
	}

	url := strings.TrimSuffix(base, "/") + "/api/monitoring/state"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach engine at %s: %w", base, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(payload, "error").String()
		if msg == "" {
			msg = resp.Status
		}

		return "", fmt.Errorf("engine rejected state change: %s", msg)
	}

	return models.MonitoringState(gjson.GetBytes(payload, "state").String()), nil
}
