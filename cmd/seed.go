package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmehdipour/enroll-gateway/internal/config"
	"github.com/jmehdipour/enroll-gateway/internal/model"
	"github.com/spf13/cobra"
)

var seedCount int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the store with demo enrollments",
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1) load config
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		// 2) open store
		st, err := openStore(cfg.Store)
		if err != nil {
			return err
		}
		defer func() { _ = st.close() }()

		if err := st.migrate(cmd.Context()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		// 3) insert, skipping what is already there
		inserted := 0
		for _, e := range demoEnrollments(seedCount, time.Now().UTC()) {
			ok, err := st.repo.InsertIfAbsent(cmd.Context(), e)
			if err != nil {
				return fmt.Errorf("insert %q: %w", e.Email, err)
			}
			if ok {
				inserted++
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), ">> Seed completed: %d new, %d requested\n", inserted, seedCount)
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 25, "number of demo enrollments")
}

var (
	demoFirst  = []string{"Ana", "Léa", "Hugo", "Inès", "Louis", "Chloé", "Jules", "Emma", "Nathan", "Sarah"}
	demoLast   = []string{"Martin", "Bernard", "Dubois", "Moreau", "Laurent", "Garcia", "Roux"}
	demoCities = []string{"Paris", "Lyon", "Marseille", "Toulouse", "Nantes", "Lille"}
	demoLevels = []string{"Bac", "Bac+2", "Bac+3", "Bac+5"}
)

// demoEnrollments is deterministic for a given n: ids and emails do not
// depend on now, so reseeding is a no-op.
// Dates spread over about six weeks to exercise every listing window.
func demoEnrollments(n int, now time.Time) []model.Enrollment {
	out := make([]model.Enrollment, 0, n)
	for i := 0; i < n; i++ {
		first := demoFirst[i%len(demoFirst)]
		last := demoLast[i%len(demoLast)]
		out = append(out, model.Enrollment{
			ID:           fmt.Sprintf("seed_%03d", i+1),
			Name:         first + " " + last,
			Email:        fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(asciiFold(first)), strings.ToLower(last), i+1),
			Telephone:    fmt.Sprintf("06%08d", 10000000+i),
			Location:     demoCities[i%len(demoCities)],
			Newsletter:   i%3 == 0,
			NiveauEtudes: demoLevels[i%len(demoLevels)],
			EnrolledAt:   now.Add(-time.Duration(i*37) * time.Hour).Truncate(time.Minute),
		})
	}
	return out
}

func asciiFold(s string) string {
	return strings.NewReplacer("é", "e", "è", "e", "ï", "i").Replace(s)
}
