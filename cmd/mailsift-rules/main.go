// mailsift-rules validates a rules file and prints a short summary, so a
// broken file is caught before a real apply run.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mailsift/mailsift/internal/config"
	"github.com/mailsift/mailsift/internal/rules"
	"github.com/mailsift/mailsift/internal/runtime"
)

func main() {
	configFile := flag.String("config", "", "config file path")
	rulesFile := flag.String("rules", "", "rules file (overrides config)")
	flag.Parse()

	if err := run(*configFile, *rulesFile); err != nil {
		runtime.DefaultLogger().Error("mailsift-rules failed", "error", err)
		os.Exit(1)
	}
}

func run(configFile, rulesFile string) error {
	if rulesFile == "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		rulesFile = cfg.RulesFile
	}

	ruleSet, err := rules.Load(rulesFile)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	fmt.Printf("%s: %d rule(s) OK\n", rulesFile, len(ruleSet))
	for _, rule := range ruleSet {
		fmt.Printf("  rule %d: match %s of %d condition(s), %d action(s)\n",
			rule.Index+1, rule.Logic, len(rule.Conditions), len(rule.Actions))
		for _, cond := range rule.Conditions {
			fmt.Printf("    if %s %s %q\n", cond.Field, cond.Predicate, cond.Value)
		}
		for _, action := range rule.Actions {
			switch action.Type {
			case rules.ActionMoveMessage:
				fmt.Printf("    then %s -> %q\n", action.Type, action.Label)
			case rules.ActionMarkRead:
				fmt.Printf("    then %s (%t)\n", action.Type, action.Read)
			default:
				fmt.Printf("    then %s\n", action.Type)
			}
		}
	}
	return nil
}
