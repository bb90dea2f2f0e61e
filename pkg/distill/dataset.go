package distill

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

// Sample is one benchmark trajectory step before labeling.
type Sample struct {
	Dataset       string
	SourceFile    string
	Instruction   string
	History       string
	CurrentAction string
	EnvInfo       string
	GroundTruth   float64
}

// Benchmark trajectory files per dataset, relative to the data directory.
// The asb "atttack_failure" spelling is the upstream filename.
var datasetFiles = map[string][]string{
	"agentharm": {
		"agentharm-traj/harmful_steps.json",
		"agentharm-traj/benign_steps.json",
	},
	"asb": {
		"asb-traj/test/DPI_attack_success.json",
		"asb-traj/test/OPI_attack_success.json",
		"asb-traj/test/atttack_failure.json",
	},
	"agentdojo": {
		"agentdojo-traj/workspace.json",
		"agentdojo-traj/travel.json",
		"agentdojo-traj/slack.json",
		"agentdojo-traj/banking.json",
	},
}

// DatasetNames returns the known datasets in loading order.
func DatasetNames() []string {
	return []string{"agentharm", "asb", "agentdojo"}
}

// LoadDataset reads every trajectory file of one dataset. Missing files are
// logged and skipped so partial benchmark checkouts stay usable.
func LoadDataset(dataDir, name string, logger *logrus.Logger) ([]Sample, error) {
	files, ok := datasetFiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown dataset %q", name)
	}

	var samples []Sample
	var parser fastjson.Parser
	for _, rel := range files {
		path := filepath.Join(dataDir, filepath.FromSlash(rel))
		data, err := os.ReadFile(path) // #nosec G304
		if err != nil {
			if os.IsNotExist(err) {
				logger.WithField("file", path).Warn("trajectory file not found, skipping")
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		root, err := parser.ParseBytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		items, err := root.Array()
		if err != nil {
			return nil, fmt.Errorf("%s: expected a JSON array: %w", path, err)
		}

		sourceFile := filepath.Base(path)
		for _, item := range items {
			samples = append(samples, Sample{
				Dataset:       name,
				SourceFile:    sourceFile,
				Instruction:   string(item.GetStringBytes("instruction")),
				History:       string(item.GetStringBytes("history")),
				CurrentAction: string(item.GetStringBytes("current_action")),
				EnvInfo:       string(item.GetStringBytes("env_info")),
				GroundTruth:   item.GetFloat64("score"),
			})
		}
		logger.WithFields(logrus.Fields{
			"dataset": name,
			"file":    sourceFile,
			"samples": len(items),
		}).Info("loaded trajectory file")
	}
	return samples, nil
}

// LoadAll loads every dataset in order, matching the labeling pipeline's
// stable sample indexing.
func LoadAll(dataDir string, logger *logrus.Logger) ([]Sample, error) {
	var all []Sample
	for _, name := range DatasetNames() {
		samples, err := LoadDataset(dataDir, name, logger)
		if err != nil {
			return nil, err
		}
		all = append(all, samples...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no samples found under %s", dataDir)
	}
	return all, nil
}
