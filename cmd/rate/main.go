package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/civil"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/ymakhloufi/deposit-slabs/internal/app/chart"
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/config"
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/model"
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/store"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

// run evaluates the stored charts for one deposit. Errors are returned rather
// than exiting so deferred cleanup runs.
func run(args []string) error {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on system env vars")
	}

	flags := flag.NewFlagSet("rate", flag.ContinueOnError)
	bank := flags.String("bank", "", "bank whose stored charts are evaluated")
	start := flags.String("start", "", "deposit start date, YYYY-MM-DD")
	end := flags.String("end", "", "deposit end date, YYYY-MM-DD")
	amount := flags.String("amount", "0", "deposit amount")
	female := flags.Bool("female", false, "account holder is female")
	child := flags.Bool("child", false, "account holder is a child")
	senior := flags.Bool("senior", false, "account holder is a senior citizen")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := cfg.Logger()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	startDate, err := civil.ParseDate(*start)
	if err != nil {
		return fmt.Errorf("bad start date: %w", err)
	}
	endDate, err := civil.ParseDate(*end)
	if err != nil {
		return fmt.Errorf("bad end date: %w", err)
	}
	depositAmount, err := decimal.NewFromString(*amount)
	if err != nil {
		return fmt.Errorf("bad amount: %w", err)
	}

	ctx := context.Background()
	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	charts, err := store.NewPostgres(pool, logger.Named("PG Store")).GetCharts(ctx, model.Bank(*bank), cfg.Currency)
	if err != nil {
		return fmt.Errorf("failed to load charts of %s: %w", *bank, err)
	}

	// senior overrides win over child, child over female
	policy := chart.FirstOverride(chart.CategorySenior, chart.CategoryChild, chart.CategoryFemale)
	eval := chart.NewEvaluator(policy, logger.Named("Evaluator"))

	holder := chart.Holder{Female: *female, Child: *child, Senior: *senior}
	rate, err := eval.RateInTiers(charts, startDate, endDate, depositAmount, holder)
	if err != nil {
		logger.Error("failed to evaluate rate", zap.Error(err))
		return err
	}
	fmt.Println(rate.String())
	return nil
}
