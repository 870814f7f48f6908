// Package main provides the dndstats binary: it loads an encounter
// definition, runs the exact combat simulation, and reports each
// participant's damage distribution and outcome probabilities.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/blamedcloud/dndstats/internal/combat"
	"github.com/blamedcloud/dndstats/internal/config"
	"github.com/blamedcloud/dndstats/internal/encounter"
	"github.com/blamedcloud/dndstats/internal/observability"
	"github.com/blamedcloud/dndstats/internal/scripting"
	"github.com/blamedcloud/dndstats/internal/sim"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dndstats.yaml", "path to configuration file")
	encounterPath := flag.String("encounter", "", "encounter file override")
	rounds := flag.Int("rounds", 0, "round count override; 0 uses the configured value")
	noMerge := flag.Bool("no-merge", false, "disable transposition merging")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *encounterPath != "" {
		cfg.Encounter.File = *encounterPath
	}
	if *rounds > 0 {
		cfg.Simulation.Rounds = *rounds
	}
	if *noMerge {
		cfg.Simulation.Merge = false
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	scripts := scripting.NewManager(logger)
	defer scripts.Close()
	if err := loadScripts(scripts, cfg.Encounter.ScriptDir); err != nil {
		logger.Fatal("loading strategy scripts", zap.Error(err))
	}

	def, roster, strategies, err := encounter.Load(cfg.Encounter.File, scripts)
	if err != nil {
		logger.Fatal("loading encounter", zap.Error(err))
	}
	logger.Info("encounter loaded",
		zap.String("encounter", def.Name),
		zap.Int("participants", len(roster)),
		zap.Int("rounds", cfg.Simulation.Rounds),
	)

	var opts []sim.Option
	if !cfg.Simulation.Merge {
		opts = append(opts, sim.WithoutMerging())
	}
	simulator, err := sim.NewEncounterSimulator(logger, roster, strategies, opts...)
	if err != nil {
		logger.Fatal("building simulator", zap.Error(err))
	}

	srv, err := simulator.SimulateRounds(ctx, cfg.Simulation.Rounds)
	if err != nil {
		logger.Fatal("simulating encounter", zap.Error(err))
	}
	logger.Info("simulation complete",
		zap.Int("branches", srv.Branches()),
		zap.Duration("elapsed", time.Since(start)),
	)

	rep, err := buildReport(def.Name, cfg.Simulation.Rounds, roster, srv, cfg.Output.Pdf)
	if err != nil {
		logger.Fatal("building report", zap.Error(err))
	}
	switch cfg.Output.Format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			logger.Fatal("encoding report", zap.Error(err))
		}
	default:
		printText(rep)
	}
}

// loadScripts loads every .lua file in dir. A missing directory is not
// an error; encounters without scripted strategies need none.
func loadScripts(scripts *scripting.Manager, dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".lua" {
			continue
		}
		if _, err := scripts.Load(filepath.Join(dir, e.Name()), 0); err != nil {
			return err
		}
	}
	return nil
}

// prob is an exact probability rendered both ways.
type prob struct {
	Exact  string  `json:"exact"`
	Approx float64 `json:"approx"`
}

func newProb(r *big.Rat) prob {
	f, _ := r.Float64()
	return prob{Exact: r.RatString(), Approx: f}
}

type participantReport struct {
	Name           string          `json:"name"`
	Team           string          `json:"team"`
	ExpectedDamage prob            `json:"expected_damage"`
	Health         map[string]prob `json:"health"`
	// DamagePdf maps damage totals to their probability. Present only
	// when the full distribution was requested.
	DamagePdf map[int]prob `json:"damage_pdf,omitempty"`
}

type report struct {
	Encounter    string              `json:"encounter"`
	Rounds       int                 `json:"rounds"`
	Branches     int                 `json:"branches"`
	PlayersWin   prob                `json:"players_win"`
	EnemiesWin   prob                `json:"enemies_win"`
	Participants []participantReport `json:"participants"`
}

func buildReport(name string, rounds int, roster []*combat.Participant, srv *sim.StateRV, pdf bool) (*report, error) {
	rep := &report{
		Encounter:  name,
		Rounds:     rounds,
		Branches:   srv.Branches(),
		PlayersWin: newProb(teamWinProb(roster, srv, combat.TeamPlayers)),
		EnemiesWin: newProb(teamWinProb(roster, srv, combat.TeamEnemies)),
	}
	for i, p := range roster {
		pid := combat.ParticipantID(i)
		dmg, err := srv.DamageRV(pid)
		if err != nil {
			return nil, fmt.Errorf("damage of %q: %w", p.Name, err)
		}
		pr := participantReport{
			Name:           p.Name,
			Team:           p.Team.String(),
			ExpectedDamage: newProb(dmg.Ev()),
			Health:         make(map[string]prob),
		}
		for _, h := range []combat.Health{combat.Healthy, combat.Bloodied, combat.ZeroHP, combat.Dead} {
			pr.Health[h.String()] = newProb(srv.ProbOf(func(ps *sim.ProbState) bool {
				return ps.HealthOf(pid) == h
			}))
		}
		if pdf {
			sparse := dmg.ToMap()
			pr.DamagePdf = make(map[int]prob, sparse.Len())
			for _, v := range sparse.Keys() {
				pr.DamagePdf[int(v)] = newProb(sparse.Pdf(v))
			}
		}
		rep.Participants = append(rep.Participants, pr)
	}
	return rep, nil
}

// teamWinProb is the probability that every opponent of the team is
// down at the end of the simulated rounds.
func teamWinProb(roster []*combat.Participant, srv *sim.StateRV, team combat.Team) *big.Rat {
	return srv.ProbOf(func(ps *sim.ProbState) bool {
		for i, p := range roster {
			if p.Team != team && ps.HealthOf(combat.ParticipantID(i)).Alive() {
				return false
			}
		}
		return true
	})
}

func printText(rep *report) {
	fmt.Printf("%s: %d rounds, %d branches\n", rep.Encounter, rep.Rounds, rep.Branches)
	fmt.Printf("players win: %s (%.4f)\n", rep.PlayersWin.Exact, rep.PlayersWin.Approx)
	fmt.Printf("enemies win: %s (%.4f)\n", rep.EnemiesWin.Exact, rep.EnemiesWin.Approx)
	for _, pr := range rep.Participants {
		fmt.Printf("\n%s (%s)\n", pr.Name, pr.Team)
		fmt.Printf("  expected damage taken: %s (%.4f)\n", pr.ExpectedDamage.Exact, pr.ExpectedDamage.Approx)
		for _, h := range []string{"healthy", "bloodied", "zero hp", "dead"} {
			p := pr.Health[h]
			if p.Approx == 0 && p.Exact == "0" {
				continue
			}
			fmt.Printf("  %-8s %s (%.4f)\n", h, p.Exact, p.Approx)
		}
		if pr.DamagePdf != nil {
			totals := make([]int, 0, len(pr.DamagePdf))
			for v := range pr.DamagePdf {
				totals = append(totals, v)
			}
			sort.Ints(totals)
			fmt.Println("  damage pdf:")
			for _, v := range totals {
				p := pr.DamagePdf[v]
				fmt.Printf("    %4d  %s (%.4f)\n", v, p.Exact, p.Approx)
			}
		}
	}
}
