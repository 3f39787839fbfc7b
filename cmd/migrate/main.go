package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	pg "pet-registry/internal/adapters/storage/postgres"
	"pet-registry/internal/config"
	"pet-registry/internal/migrate"
	"pet-registry/internal/platform/logger"
)

var dsn string

var rootCmd = &cobra.Command{
	Use:   "petmigrate",
	Short: "Secuenciador de migraciones de ownership",
	Long: `Corre las transiciones de generación del esquema de ownership:

  single-owner-cat -> typed-pet-single-owner -> typed-pet-multi-owner

Cada transición tiene dos fases: copia idempotente de datos y cutover.
El cutover solo corre con la copia verificada, y siempre en un paso aparte.`,
}

var upCmd = &cobra.Command{
	Use:   "up [generation]",
	Short: "Avanzar hasta una generación (default: la última)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := migrate.Latest()
		if len(args) == 1 {
			g, err := migrate.ParseGeneration(args[0])
			if err != nil {
				return err
			}
			target = g
		}

		seq, cleanup, err := buildSequencer(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if err := seq.AdvanceTo(cmd.Context(), target); err != nil {
			var ve *migrate.VerificationError
			if errors.As(err, &ve) {
				fmt.Fprintln(os.Stderr, "verification failed, cutover NOT applied:")
				for _, p := range ve.Problems {
					fmt.Fprintf(os.Stderr, "  - %s\n", p)
				}
			}
			return err
		}

		fmt.Printf("schema at generation %s\n", target)
		return nil
	},
}

var phaseCmd = &cobra.Command{
	Use:   "phase <copy|verify|cutover>",
	Short: "Correr una sola fase de la próxima transición pendiente",
	Long: `Permite avanzar de a pasos: copiar hoy, verificar y cortar mañana.
La copia es idempotente (re-correrla no duplica filas).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		phase, err := migrate.ParsePhase(args[0])
		if err != nil {
			return err
		}

		seq, cleanup, err := buildSequencer(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		run, err := seq.RunPhase(cmd.Context(), phase)
		if err != nil {
			return err
		}

		fmt.Printf("%s: %s (rows=%d)\n", run.Transition, run.Status, run.CopiedRows)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Generación vigente y estado de las transiciones",
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, cleanup, err := buildSequencer(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		cur, runs, err := seq.Status(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("current generation: %s\n\n", cur)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TRANSITION\tSTATUS\tROWS\tERROR")
		for _, r := range runs {
			errMsg := ""
			if r.Error != nil {
				errMsg = *r.Error
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.Transition, r.Status, r.CopiedRows, errMsg)
		}
		return w.Flush()
	},
}

func buildSequencer(ctx context.Context) (*migrate.Sequencer, func(), error) {
	if dsn == "" {
		dsn = config.Load().DatabaseDSN
	}
	if dsn == "" {
		return nil, nil, errors.New("database DSN required (--db or DB_DSN)")
	}

	db, err := pg.Open(dsn)
	if err != nil {
		return nil, nil, err
	}

	store := pg.NewMigrationStore(db)
	if err := store.Initialize(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	seq, err := migrate.NewSequencer(store, []migrate.Step{
		pg.NewCatsToTypedPetsStep(db),
		pg.NewOwnerColumnToJoinStep(db),
	}, logger.NewFromEnv())
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return seq, func() { _ = db.Close() }, nil
}

func main() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&dsn, "db", "", "DSN de Postgres (default: env DB_DSN)")
	rootCmd.AddCommand(upCmd, phaseCmd, statusCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
