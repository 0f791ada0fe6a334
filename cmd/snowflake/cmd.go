/*

  Copyright 2012 Dmitry Kolesnikov, All Rights Reserved

  Licensed under the Apache License, Version 2.0 (the "License");
  you may not use this file except in compliance with the License.
  You may obtain a copy of the License at

      http://www.apache.org/licenses/LICENSE-2.0

  Unless required by applicable law or agreed to in writing, software
  distributed under the License is distributed on an "AS IS" BASIS,
  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
  See the License for the specific language governing permissions and
  limitations under the License.

*/

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/young-yangyong/SnowFlake"
	"github.com/young-yangyong/SnowFlake/internal/config"
)

const (
	confFilePathFlag = "config"
	machineFlag      = "machine"
	maxMachinesFlag  = "max-machines"
	maxSequenceFlag  = "max-sequence"
	epochFlag        = "epoch"
	developmentFlag  = "dev"
	logLevelFlag     = "level"
	countFlag        = "count"
	formatFlag       = "format"
)

// output formats
const (
	formatDec  = "dec"
	formatB64  = "b64"
	formatJSON = "json"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// record is the decoded form of identifier
type record struct {
	ID      uint64    `json:"id"`
	String  string    `json:"string"`
	Time    time.Time `json:"time"`
	Machine int64     `json:"machine"`
	Seq     int64     `json:"seq"`
}

func newRecord(g *snowflake.Generator, id snowflake.ID) record {
	_, machine, seq := g.Layout().Split(id)
	return record{
		ID:      id.Uint64(),
		String:  id.String(),
		Time:    g.Time(id).UTC(),
		Machine: machine,
		Seq:     seq,
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "snowflake",
		Short:         "generates and inspects snowflake identifiers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)

	flags := root.PersistentFlags()
	flags.String(confFilePathFlag, "", "config file path (toml)")
	flags.Int64(machineFlag, 0, "machine id, [0, max-machines)")
	flags.Int64(maxMachinesFlag, 0, "max number of machines")
	flags.Int64(maxSequenceFlag, 0, "max number of ids per millisecond")
	flags.String(epochFlag, "", "custom epoch, RFC3339")
	flags.Bool(developmentFlag, false, "development mode")
	flags.String(logLevelFlag, "", "log level")
	flags.String(formatFlag, formatDec, "output format: dec, b64 or json")

	next := &cobra.Command{
		Use:   "next [--count n]",
		Short: "issue identifiers",
		Args:  cobra.NoArgs,
		RunE:  runNext,
	}
	next.Flags().Int(countFlag, 1, "number of identifiers to issue")

	inspect := &cobra.Command{
		Use:   "inspect id...",
		Short: "decode identifiers, either decimal or b64",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runInspect,
	}

	root.AddCommand(next, inspect)
	return root
}

func loadConfig(cmd *cobra.Command) (cfg *config.Config, err error) {
	flags := cmd.Flags()

	if fn, _ := flags.GetString(confFilePathFlag); len(strings.TrimSpace(fn)) != 0 {
		if cfg, err = config.Read(strings.TrimSpace(fn)); err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	if err = cfg.FromEnv(); err != nil {
		return nil, err
	}

	if flags.Changed(machineFlag) {
		cfg.MachineID, _ = flags.GetInt64(machineFlag)
	}
	if flags.Changed(maxMachinesFlag) {
		cfg.MaxMachineID, _ = flags.GetInt64(maxMachinesFlag)
	}
	if flags.Changed(maxSequenceFlag) {
		cfg.MaxSequence, _ = flags.GetInt64(maxSequenceFlag)
	}
	if flags.Changed(epochFlag) {
		s, _ := flags.GetString(epochFlag)
		if cfg.Epoch, err = time.Parse(time.RFC3339, strings.TrimSpace(s)); err != nil {
			return nil, fmt.Errorf("cmd flag %s, RFC3339 expected: %w", epochFlag, err)
		}
	}
	if flags.Changed(developmentFlag) {
		cfg.Development, _ = flags.GetBool(developmentFlag)
	}
	if flags.Changed(logLevelFlag) {
		cfg.LogLevel, _ = flags.GetString(logLevelFlag)
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func outputFormat(cmd *cobra.Command) (string, error) {
	f, _ := cmd.Flags().GetString(formatFlag)
	switch f = strings.ToLower(strings.TrimSpace(f)); f {
	case formatDec, formatB64, formatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("cmd flag %s, dec, b64 or json expected", formatFlag)
	}
}

func runNext(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	count, _ := cmd.Flags().GetInt(countFlag)
	if count < 1 {
		return fmt.Errorf("cmd flag %s, positive integer expected", countFlag)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lg, err := cfg.Logger()
	if err != nil {
		return err
	}
	defer lg.Sync()

	g, err := cfg.Generator()
	if err != nil {
		lg.Error("failed to create generator", zap.Error(err))
		return err
	}

	ids := make([]snowflake.ID, 0, count)
	for i := 0; i < count; i++ {
		id, err := g.NextID()
		if err != nil {
			lg.Error("failed to issue id", zap.Int("issued", i), zap.Error(err))
			return err
		}
		ids = append(ids, id)
	}

	return write(cmd.OutOrStdout(), format, g, ids)
}

func runInspect(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lg, err := cfg.Logger()
	if err != nil {
		return err
	}
	defer lg.Sync()

	g, err := cfg.Generator()
	if err != nil {
		lg.Error("failed to create generator", zap.Error(err))
		return err
	}

	ids := make([]snowflake.ID, 0, len(args))
	for _, arg := range args {
		id, err := snowflake.Parse(strings.TrimSpace(arg))
		if err != nil {
			lg.Error("failed to parse id", zap.String("id", arg), zap.Error(err))
			return err
		}
		ids = append(ids, id)
	}

	if format == formatJSON {
		return write(cmd.OutOrStdout(), format, g, ids)
	}

	w := bufio.NewWriter(cmd.OutOrStdout())
	for _, id := range ids {
		r := newRecord(g, id)
		fmt.Fprintf(w, "%d %s time=%s machine=%d seq=%d\n",
			r.ID, r.String, r.Time.Format(time.RFC3339Nano), r.Machine, r.Seq)
	}
	return w.Flush()
}

func write(out io.Writer, format string, g *snowflake.Generator, ids []snowflake.ID) error {
	if format == formatJSON {
		seq := make([]record, 0, len(ids))
		for _, id := range ids {
			seq = append(seq, newRecord(g, id))
		}
		return json.NewEncoder(out).Encode(seq)
	}

	w := bufio.NewWriter(out)
	for _, id := range ids {
		switch format {
		case formatB64:
			fmt.Fprintln(w, id.String())
		default:
			fmt.Fprintln(w, id.Uint64())
		}
	}
	return w.Flush()
}
