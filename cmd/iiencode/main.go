// Command iiencode converts a pre-rendered sequence of Apple II display
// memory dumps plus a WAV soundtrack into the tick-opcode byte stream
// the player decoder consumes over the wire.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/KrisKennaway/ii-vision-sub000/dots"
	"github.com/KrisKennaway/ii-vision-sub000/frame"
	"github.com/KrisKennaway/ii-vision-sub000/iiconfig"
	"github.com/KrisKennaway/ii-vision-sub000/iierr"
	"github.com/KrisKennaway/ii-vision-sub000/opcode"
	"github.com/KrisKennaway/ii-vision-sub000/pcmaudio"
	"github.com/KrisKennaway/ii-vision-sub000/scheduler"
	"github.com/KrisKennaway/ii-vision-sub000/screen"
	"github.com/KrisKennaway/ii-vision-sub000/stream"
	"go.uber.org/zap"
)

func main() {
	configPath, rest := extractConfigFlag(os.Args[1:])

	cfg, err := iiconfig.Parse(rest, configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "iiencode: %v\n", err)
		os.Exit(1)
	}

	log, err := iiconfig.NewLogger(cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "iiencode: building logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("encoding run failed", zap.Error(err))
		os.Exit(1)
	}
}

// extractConfigFlag pulls --config/-c out of args before handing the rest
// to iiconfig.Parse, which otherwise has no flag of its own named
// "config" (the YAML sidecar path is a Parse parameter, not a Config
// field).
func extractConfigFlag(args []string) (path string, rest []string) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config", "-c":
			if i+1 < len(args) {
				path = args[i+1]
				rest = append(rest, args[:i]...)
				rest = append(rest, args[i+2:]...)
				return path, rest
			}
		}
	}
	return "", args
}

func run(cfg iiconfig.Config, log *zap.Logger) error {
	mode := screen.ModeHGR
	if cfg.Mode == "dhgr" {
		mode = screen.ModeDHGR
	}
	pal := screen.PaletteNTSC
	if cfg.Palette == "rgb" {
		pal = screen.PaletteRGB
	}

	log.Info("starting encode",
		zap.String("mode", mode.String()),
		zap.String("palette", pal.String()),
		zap.String("frame_dir", cfg.FrameDir),
		zap.String("output", cfg.Output))

	symFile, err := os.Open(cfg.SymbolFile)
	if err != nil {
		return fmt.Errorf("opening symbol file: %w", err)
	}
	defer symFile.Close()

	table, err := opcode.LoadTable(symFile, log)
	if err != nil {
		return fmt.Errorf("loading opcode table: %w", err)
	}

	tables := dots.LoadOrBuild(cfg.CacheDir, mode, pal, log)

	samples, normalization, err := loadAudio(cfg, log)
	if err != nil {
		return err
	}

	frames := frame.NewDirSource(cfg.FrameDir, mode)
	sched := scheduler.New(tables, mode)

	out, closeOut, err := openOutput(cfg.Output)
	if err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	defer closeOut()

	mux := stream.NewMuxer(out, table)
	mux.MaxBytesOut = cfg.MaxBytesOut

	cyclesPerFrame := pcmaudio.CPUHz / cfg.FrameRate

	drv := &driver{
		frames:         frames,
		sched:          sched,
		samples:        samples,
		normalization:  normalization,
		mux:            mux,
		cyclesPerFrame: cyclesPerFrame,
		log:            log,
	}

	if err := mux.Run(context.Background(), drv.next); err != nil {
		return fmt.Errorf("multiplexing stream: %w", err)
	}

	log.Info("encode complete",
		zap.Int64("bytes_out", mux.StreamPos()),
		zap.Int("ticks", drv.tickCount))
	return nil
}

// loadAudio decodes and resamples the input WAV to the fixed tick rate,
// returning its normalization factor (auto-detected unless the config
// explicitly overrides it).
func loadAudio(cfg iiconfig.Config, log *zap.Logger) ([]float64, float64, error) {
	if cfg.InputAudio == "" {
		log.Warn("no --audio given, encoding silence")
		return nil, 1, nil
	}

	f, err := os.Open(cfg.InputAudio)
	if err != nil {
		return nil, 0, fmt.Errorf("opening audio: %w", err)
	}
	defer f.Close()

	src, err := pcmaudio.Decode(f)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding audio: %w", err)
	}

	samples, err := pcmaudio.Resample(src)
	if err != nil {
		return nil, 0, fmt.Errorf("resampling audio: %w", err)
	}

	norm := cfg.Normalization
	if norm == 0 {
		norm = pcmaudio.Normalization(samples)
	}
	log.Info("audio loaded", zap.Int("samples", len(samples)), zap.Float64("normalization", norm))
	return samples, norm, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// driver turns the frame source, the audio sample stream and the
// scheduler into the stream.NextFunc the muxer pulls from: one call
// pulls one audio sample, advances the scheduler to the next target
// frame once the muxer's cycle accountant says the frame is due
// (spec.md §4.7), and returns the resulting opcode.
type driver struct {
	frames        frame.Source
	sched         *scheduler.Scheduler
	samples       []float64
	normalization float64

	// mux is consulted, never driven: the cycle count it accumulates as
	// opcodes are emitted is the sole clock frame advance is measured
	// against (spec.md §4.7's "only synchronization between audio time
	// and video time").
	mux            *stream.Muxer
	cyclesPerFrame float64

	log *zap.Logger

	target      *screen.MemoryImage
	frameNumber int

	converged       bool
	convergedResult scheduler.Result

	sampleIdx int
	tickCount int
	exhausted bool
}

func (d *driver) next() (opcode.Opcode, bool, error) {
	if d.exhausted {
		return opcode.Opcode{}, false, nil
	}
	// A nil sample slice (no --audio given) encodes silence until the
	// frames or the byte budget run out.
	if d.samples != nil && d.sampleIdx >= len(d.samples) {
		d.exhausted = true
		return opcode.Opcode{}, false, nil
	}

	due := d.target == nil || float64(d.mux.Cycles()) >= d.cyclesPerFrame*float64(d.frameNumber)
	if due {
		next, err := d.frames.Next()
		if err == io.EOF {
			d.exhausted = true
			return opcode.Opcode{}, false, nil
		}
		if err != nil {
			return opcode.Opcode{}, false, err
		}
		d.target = next
		d.sched.BeginFrame(d.target)
		d.frameNumber++
		d.converged = false
		d.log.Debug("advanced to next target frame", zap.Int("frame", d.frameNumber))
	}

	var sample float64
	if d.samples != nil {
		sample = d.samples[d.sampleIdx]
	}
	step := pcmaudio.Quantize(sample, d.normalization)
	cycles := pcmaudio.TickCycles(step)
	d.sampleIdx++
	d.tickCount++

	res := d.convergedResult
	if !d.converged {
		const paletteBit = 0
		res = d.sched.SelectTick(d.target, paletteBit)
		if res.Converged {
			d.converged = true
			d.convergedResult = res
			d.log.Debug((&iierr.SchedulerUnderflowError{Frame: d.frameNumber}).Error())
		}
	}
	return opcode.Tick(cycles, res.Page, res.Content, res.Offsets), true, nil
}
