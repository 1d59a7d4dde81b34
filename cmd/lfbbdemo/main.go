// Command lfbbdemo drives a single-producer/single-consumer lfbb.Buffer
// with a simulated workload, logging acquire-miss counts and throughput. It exists to exercise the core package the way a real
// deployment would wire it up, not as part of the coordination protocol
// itself.
package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/drgolem/lfbb"
)

var cmd struct {
	ConfigPath string
	Verbose    bool
}

var rootCmd = &cobra.Command{
	Use:   "lfbbdemo",
	Short: "Drive a lock-free bipartite buffer with a simulated producer/consumer",
	RunE: func(_ *cobra.Command, _ []string) error {
		return run(cmd.ConfigPath, cmd.Verbose)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&cmd.ConfigPath, "config", "c", "", "path to a YAML config file (optional)")
	rootCmd.Flags().BoolVarP(&cmd.Verbose, "verbose", "v", false, "log every acquire miss, not just the totals")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}

func run(configPath string, verbose bool) error {
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.Development = false
	if verbose {
		zapCfg.Level.SetLevel(zap.DebugLevel)
	} else {
		zapCfg.Level.SetLevel(zap.InfoLevel)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log.Infow("starting run",
		"capacity_bytes", cfg.CapacityBytes,
		"chunk_bytes", cfg.ChunkBytes,
		"chunks", cfg.Chunks,
		"cache_line_padding", cfg.CacheLinePadding,
	)

	buf := lfbb.New(make([]byte, cfg.CapacityBytes), cfg.ToOptions()...)

	var wg sync.WaitGroup
	wg.Add(2)

	start := time.Now()
	writeMisses := 0

	go func() {
		defer wg.Done()
		for seq := 0; seq < cfg.Chunks; seq++ {
			var region []byte
			for region == nil {
				region = buf.WriteAcquire(cfg.ChunkBytes)
				if region == nil {
					writeMisses++
					if verbose {
						log.Debugw("write acquire miss", "sequence", seq)
					}
					time.Sleep(time.Microsecond)
				}
			}
			for j := range region {
				region[j] = byte(seq + j)
			}
			buf.WriteRelease(uint64(len(region)))
		}
		log.Infow("producer done", "write_misses", writeMisses)
	}()

	readMisses := 0
	totalRead := 0

	go func() {
		defer wg.Done()
		target := cfg.Chunks * int(cfg.ChunkBytes)
		for totalRead < target {
			region, available := buf.ReadAcquire()
			if region == nil {
				readMisses++
				if verbose {
					log.Debugw("read acquire miss", "total_read", totalRead)
				}
				time.Sleep(time.Microsecond)
				continue
			}
			buf.ReadRelease(available)
			totalRead += int(available)
		}
		log.Infow("consumer done", "read_misses", readMisses, "bytes_read", totalRead)
	}()

	wg.Wait()
	elapsed := time.Since(start)
	log.Infow("run complete",
		"elapsed", elapsed.String(),
		"throughput_mb_s", float64(totalRead)/elapsed.Seconds()/(1024*1024),
	)

	return nil
}

