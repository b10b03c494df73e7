// cmd/tools/policy-lint/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"rm-copilot/internal/engine/policy"
	"rm-copilot/internal/models"
)

// policy-lint validates a bank policy file before it is rolled out:
// every enumeration value must map to exactly one judgment, thresholds must
// be ordered, and the weak rating band must be non-empty. It also diffs the
// file against the shipped defaults so reviewers see what changed.
func main() {
	path := flag.String("path", "configs/policy.yaml", "Path to policy file")
	flag.Parse()

	p, err := policy.Load(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "policy-lint: %s: %v\n", *path, err)
		os.Exit(1)
	}

	fmt.Printf("Policy %s is valid.\n\n", *path)
	fmt.Printf("Eligibility bands: positive >= %.2f, negative < %.2f\n",
		p.Eligibility.PositiveMin, p.Eligibility.NegativeBelow)
	fmt.Printf("Weak when negatives >= %d\n", p.Readiness.WeakNegativeCount)
	fmt.Printf("Weak rating band: %v\n", p.Rating.WeakGrades)
	fmt.Printf("Strategic sectors: %v\n", p.Sectors.Strategic)

	diffAgainstDefaults(p)
}

func diffAgainstDefaults(p *policy.Policy) {
	def := policy.Default()
	changed := false

	if p.Eligibility != def.Eligibility {
		fmt.Printf("\nNOTE: eligibility bands differ from shipped defaults (%.2f / %.2f)\n",
			def.Eligibility.PositiveMin, def.Eligibility.NegativeBelow)
		changed = true
	}
	if p.Readiness.WeakNegativeCount != def.Readiness.WeakNegativeCount {
		fmt.Printf("\nNOTE: weak_negative_count differs from shipped default (%d)\n",
			def.Readiness.WeakNegativeCount)
		changed = true
	}

	for _, field := range models.SignalFieldOrder {
		if field == models.FieldEligibility {
			continue
		}
		for _, value := range models.SignalMembers(field) {
			got, err := p.JudgeSignal(field, value)
			if err != nil {
				continue
			}
			want, err := def.JudgeSignal(field, value)
			if err != nil {
				continue
			}
			if got != want {
				fmt.Printf("\nNOTE: %s=%q judged %s (shipped default: %s)\n", field, value, got, want)
				changed = true
			}
		}
	}

	if !changed {
		fmt.Println("\nPolicy matches shipped defaults.")
	}
}
