package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"voicestamp/internal/audio"
	"voicestamp/internal/config"
	"voicestamp/internal/logger"
	"voicestamp/internal/metadata"
	"voicestamp/internal/output"
	"voicestamp/internal/placeholder"
	"voicestamp/internal/schedule"
	"voicestamp/internal/shutdown"
	"voicestamp/internal/speech"
	"voicestamp/pkg/utils"
)

// Job stamps input files one at a time with a fixed configuration.
type Job struct {
	Config config.Config
	Logger *logger.Logger
	Deps   Deps
	Hooks  Hooks
	// Shutdown, when set, removes the workspace if the process is interrupted.
	Shutdown *shutdown.Handler
}

// Result describes one stamped input.
type Result struct {
	Input    string
	Track    metadata.Track
	Schedule schedule.Schedule
	Segments []SegmentResult
}

// SegmentResult describes one written (or, in dry-run, planned) output file.
type SegmentResult struct {
	Index  int
	Title  string
	Output string
	Exists bool   // dry-run only: the target is already there
	URL    string // set when the file was uploaded
}

// Stamp processes one input file. On error nothing is left at the target
// paths that were not there before, except outputs of segments that had
// already been committed.
func (j *Job) Stamp(ctx context.Context, input string) (Result, error) {
	cfg := j.Config
	log := j.Logger

	res := Result{Input: input}

	track, err := metadata.Load(ctx, j.Deps.Prober, input)
	if err != nil {
		return res, err
	}
	res.Track = track
	log.Debug("Duration: %.1f secs (%d minutes), bitrate %d", track.DurationSeconds, track.DurationMinutes, track.Bitrate)

	// a split segment may be long enough while the track itself is not
	if minimum := schedule.MinimumMinutes(cfg.TickOffset); track.DurationMinutes < minimum {
		return res, &schedule.SegmentTooShortError{Min: minimum, Actual: track.DurationMinutes}
	}

	sched, err := schedule.Compute(schedule.Params{
		TotalMinutes: track.DurationMinutes,
		Interval:     cfg.TickInterval,
		Offset:       cfg.TickOffset,
		SplitMinutes: cfg.SplitSegmentDuration,
		TicksEnabled: cfg.TickFormat != "",
	})
	if err != nil {
		return res, err
	}
	res.Schedule = sched

	composer := j.composer()
	values := track.Placeholders()
	namer := output.Namer{Format: cfg.FileOutFormat, Target: cfg.FileOut, Force: cfg.ForceOverwrite}

	if cfg.DryRun {
		return j.dryRun(res, composer, values, namer)
	}

	// refuse early rather than after minutes of encoding
	for i := 0; i < sched.SegmentCount; i++ {
		if _, err := namer.Resolve(input, segmentNumber(i, sched.SegmentCount)); err != nil {
			return res, err
		}
	}

	workspace, err := utils.CreateTempDir("voicestamp")
	if err != nil {
		return res, err
	}
	log.Debug("Tmp dir: %s", workspace)
	defer j.cleanupFunc(workspace)()

	wavs, err := j.Deps.Converter.ToWAVSegments(ctx, input, workspace, cfg.SplitSegmentDuration)
	if err != nil {
		return res, err
	}
	if len(wavs) != sched.SegmentCount {
		log.Debug("Converter produced %d segments, schedule expected %d", len(wavs), sched.SegmentCount)
		sched.SegmentCount = len(wavs)
		res.Schedule = sched
	}

	rms, err := j.Deps.Meter.MeasureRMS(ctx, wavs...)
	if err != nil {
		return res, err
	}
	target := audio.TargetAmplitude(rms, cfg.SpeechVolumeFactor)
	log.Debug("Source RMS amplitude %f, speech target %f", rms, target)

	// ticks carry no segment context, so one ticks track serves every segment
	ticksWav, err := j.buildTicks(ctx, filepath.Join(workspace, "ticks"), composer.BuildPlan(sched, values, 0), target)
	if err != nil {
		return res, err
	}

	segments, err := j.stampSegments(ctx, segmentJob{
		input:     input,
		workspace: workspace,
		track:     track,
		sched:     sched,
		composer:  composer,
		values:    values,
		namer:     namer,
		wavs:      wavs,
		ticksWav:  ticksWav,
		target:    target,
	})
	res.Segments = segments
	return res, err
}

func (j *Job) composer() speech.Composer {
	return speech.Composer{
		TitleFormat:  j.Config.TitleFormat,
		TickFormat:   j.Config.TickFormat,
		TickOffset:   j.Config.TickOffset,
		TickInterval: j.Config.TickInterval,
		TickAdd:      j.Config.TickAdd,
		ConfigName:   speech.Speakable(j.Config.Name),
		Split:        j.Config.SplitSegmentDuration > 0,
	}
}

// cleanupFunc registers workspace removal with the shutdown handler and
// returns the func that removes it on the normal exit path.
func (j *Job) cleanupFunc(workspace string) func() {
	remove := func() {
		if j.Config.NoCleanup {
			j.Logger.Info("Temp folder %q not cleared.", workspace)
			return
		}
		if err := utils.Cleanup(workspace); err != nil {
			j.Logger.Warn("Failed to remove temp folder %s: %v", workspace, err)
		}
	}

	release := func() {}
	if j.Shutdown != nil {
		release = j.Shutdown.AddCleanup(remove)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			release()
			remove()
		})
	}
}

// buildTicks speaks every tick, pads each clip to its slot and joins them
// behind a silent lead-in. It returns "" when there are no ticks.
func (j *Job) buildTicks(ctx context.Context, dir string, plan speech.Plan, target float64) (string, error) {
	ticks := plan.Ticks()
	if len(ticks) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create ticks directory: %w", err)
	}

	clips := make([]string, 0, len(plan.Phrases))
	clips = append(clips, filepath.Join(dir, "silence.wav"))
	for i, phrase := range ticks {
		clip := filepath.Join(dir, fmt.Sprintf("%d.wav", i+1))
		j.Logger.Debug("Tick %d: %q", i+1, phrase)
		if err := j.Deps.Synthesizer.Synthesize(ctx, phrase, clip); err != nil {
			return "", err
		}
		clips = append(clips, clip)
	}

	// every clip of the job shares the synthesizer's rate
	rate, err := j.Deps.SampleRate(clips[1])
	if err != nil {
		return "", err
	}
	if err := j.Deps.Converter.Silence(ctx, clips[0], rate); err != nil {
		return "", err
	}

	ticksWav := filepath.Join(dir, "ticks.wav")
	filter := speech.PadConcatFilter(plan.PaddingSamples(rate))
	if err := j.Deps.Converter.PadConcat(ctx, ticksWav, clips, filter); err != nil {
		return "", err
	}
	if err := j.Deps.Gain.Apply(ctx, ticksWav, target); err != nil {
		return "", err
	}
	return ticksWav, nil
}

type segmentJob struct {
	input     string
	workspace string
	track     metadata.Track
	sched     schedule.Schedule
	composer  speech.Composer
	values    placeholder.Values
	namer     output.Namer
	wavs      []string
	ticksWav  string
	target    float64
}

// stampSegments runs the segments through a bounded worker pool. The first
// failure cancels the segments that have not finished yet.
func (j *Job) stampSegments(ctx context.Context, sj segmentJob) ([]SegmentResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parallel := max(j.Config.ParallelSegments, 1)
	results := make([]SegmentResult, len(sj.wavs))

	var (
		wg        sync.WaitGroup
		semaphore = make(chan struct{}, parallel)
		errMu     sync.Mutex
		firstErr  error
	)

	// segments start in order; none starts once one has failed
	acquire := func() bool {
		select {
		case semaphore <- struct{}{}:
			if ctx.Err() != nil {
				<-semaphore
				return false
			}
			return true
		case <-ctx.Done():
			return false
		}
	}

	for i := range sj.wavs {
		if !acquire() {
			break
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			r, err := j.stampSegment(ctx, sj, idx)
			// a committed output is reported even when a later step failed
			results[idx] = r
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				errMu.Unlock()
				return
			}
			if j.Hooks.OnSegmentDone != nil {
				j.Hooks.OnSegmentDone(sj.input, idx, len(sj.wavs))
			}
		}(i)
	}
	wg.Wait()

	if firstErr == nil && ctx.Err() != nil {
		firstErr = ctx.Err()
	}

	done := make([]SegmentResult, 0, len(results))
	for _, r := range results {
		if r.Output != "" {
			done = append(done, r)
		}
	}
	return done, firstErr
}

func (j *Job) stampSegment(ctx context.Context, sj segmentJob, idx int) (SegmentResult, error) {
	log := j.Logger
	count := len(sj.wavs)
	res := SegmentResult{Index: idx}

	out, err := sj.namer.Resolve(sj.input, segmentNumber(idx, count))
	if err != nil {
		return res, err
	}
	log.Debug("Doing segment %d as %s", idx, out)

	dir := filepath.Join(sj.workspace, fmt.Sprintf("segment-%03d", idx))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return res, fmt.Errorf("failed to create segment directory: %w", err)
	}

	plan := sj.composer.BuildPlan(sj.sched, sj.values, idx)
	res.Title = plan.Title
	log.Info("Announced as %q", plan.Title)
	log.Debug("Announcement format %q", j.Config.TitleFormat)

	titleWav := filepath.Join(dir, "title.wav")
	if err := j.Deps.Synthesizer.Synthesize(ctx, plan.Title, titleWav); err != nil {
		return res, err
	}
	if err := j.Deps.Gain.Apply(ctx, titleWav, sj.target); err != nil {
		return res, err
	}

	inputs := []string{sj.wavs[idx], titleWav}
	if sj.ticksWav != "" {
		inputs = append(inputs, sj.ticksWav)
	}

	log.Info("Writing: %q", out)
	tmpMP3 := filepath.Join(filepath.Dir(out), ".voicestamp-"+uuid.NewString()+".mp3")
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpMP3)
		}
	}()

	if err := j.Deps.Mixer.Mix(ctx, tmpMP3, sj.track.EncodingQuality(), inputs); err != nil {
		return res, err
	}
	if err := j.Deps.Tagger.Write(tmpMP3, sj.track, plan.Title); err != nil {
		return res, err
	}

	if utils.Exists(out) {
		if !j.Config.ForceOverwrite {
			return res, fmt.Errorf("%w: %s", output.ErrTargetExists, out)
		}
		if err := os.Remove(out); err != nil {
			return res, fmt.Errorf("failed to replace %s: %w", out, err)
		}
	}
	if err := utils.MoveFile(tmpMP3, out); err != nil {
		return res, err
	}
	committed = true
	res.Output = out

	if j.Deps.Uploader != nil {
		url, err := j.Deps.Uploader.Upload(ctx, out)
		if err != nil {
			return res, fmt.Errorf("%s was written but not published: %w", out, err)
		}
		log.Info("Uploaded %s to %s", filepath.Base(out), url)
		res.URL = url
	}

	return res, nil
}

// dryRun reports what would be written without running any tool.
func (j *Job) dryRun(res Result, composer speech.Composer, values placeholder.Values, namer output.Namer) (Result, error) {
	log := j.Logger
	cfg := j.Config
	sched := res.Schedule

	target := audio.TargetAmplitude(audio.DryRunRMS, cfg.SpeechVolumeFactor)
	log.Info("Segment duration %d minutes, %d ticks per segment", sched.SegmentDurationMinutes, len(sched.TickOffsets))
	log.Debug("Tick format %q, speech target amplitude %.2f", cfg.TickFormat, target)

	plan := composer.BuildPlan(sched, values, 0)
	for i, tick := range plan.Ticks() {
		log.Debug("Tick at %d min: %q", sched.TickOffsets[i], tick)
	}

	for i := 0; i < sched.SegmentCount; i++ {
		seg := SegmentResult{Index: i}
		seg.Title = composer.BuildPlan(sched, values, i).Title
		log.Info("Announced as %q", seg.Title)
		log.Debug("Announcement format %q", cfg.TitleFormat)
		if keys := placeholder.Keys(seg.Title); len(keys) > 0 {
			log.Warn("Unknown placeholders left in title: %v", keys)
		}

		out, err := namer.Resolve(res.Input, segmentNumber(i, sched.SegmentCount))
		switch {
		case errors.Is(err, output.ErrTargetExists):
			seg.Exists = true
			log.Info("Output file %q *** TARGET FILE ALREADY EXISTS ***", out)
		case err != nil:
			return res, err
		default:
			log.Info("Output file %q", out)
		}
		log.Debug("Output file name format %q", cfg.FileOutFormat)
		seg.Output = out
		res.Segments = append(res.Segments, seg)
	}

	return res, nil
}

// segmentNumber is the one based file name qualifier, nil for unsplit output.
func segmentNumber(idx, count int) *int {
	if count <= 1 {
		return nil
	}
	n := idx + 1
	return &n
}
