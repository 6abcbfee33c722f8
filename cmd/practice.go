package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/mockwise/internal/devices"
	"github.com/spigell/mockwise/internal/logger"
	"github.com/spigell/mockwise/internal/model"
	"github.com/spigell/mockwise/internal/notify"
	"github.com/spigell/mockwise/internal/recorder"
	"github.com/spigell/mockwise/internal/speech"
)

const (
	PromptStart          = "Start recording"
	PromptStop           = "Stop recording"
	PromptSpeak          = "Speak (type a line, prefix with ~ for a preview)"
	PromptTranscriptFile = "Load transcript from file"
	PromptRecordAgain    = "Record again"
	PromptSave           = "Save answer"
	PromptWebcam         = "Toggle webcam"
	PromptCamera         = "Select camera"
	PromptNext           = "Next question"
	PromptQuit           = "Quit"
)

var (
	errQuit         = errors.New("quit requested")
	errNextQuestion = errors.New("next question requested")
)

var practiceCmd = &cobra.Command{
	Use:   "practice [interview-id]",
	Short: "Answer the questions of an interview and get them scored",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		practice(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(practiceCmd)

	practiceCmd.Flags().StringP("file", "f", "", "load the interview from a YAML file instead of storage")
	practiceCmd.Flags().Bool("no-camera", false, "do not look for cameras")
}

func newConsoleNotifier(w io.Writer, log *zap.Logger) notify.Notifier {
	console := notify.Func(func(n notify.Notice) {
		fmt.Fprintf(w, "[%s] %s: %s\n", strings.ToUpper(string(n.Level)), n.Title, n.Description)
	})
	return notify.Multi{console, notify.NewLogNotifier(logger.Component(log, "notice"))}
}

// session is one interactive run over the questions of an interview.
type session struct {
	out      io.Writer
	log      *zap.Logger
	notifier notify.Notifier
	engine   *speech.LineEngine
	rec      *recorder.Recorder
	cameras  *devices.Enumerator
	camera   *devices.Camera
}

func practice(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	config, log := setup()

	file, _ := cmd.Flags().GetString("file")
	if file == "" && len(args) == 0 {
		log.Fatal("an interview id or --file is required")
	}
	if config.User == "" {
		log.Warn("no user configured, answers cannot be saved",
			zap.String("hint", "set --user, MOCKWISE_USER or the 'user' key in the configuration file"))
	}

	d, err := buildDeps(ctx, config, log, true)
	if err != nil {
		log.Fatal("building dependencies", zap.Error(err))
	}
	defer d.Close()

	var in model.Interview
	if file != "" {
		in, err = readInterviewFile(file)
		if in.ID == "" {
			in.ID = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		}
	} else {
		in, err = d.store.GetInterview(ctx, args[0])
	}
	if err != nil {
		log.Fatal("loading interview", zap.Error(err))
	}

	out := cmd.OutOrStdout()
	notifier := newConsoleNotifier(out, log)
	engine := speech.NewLineEngine(logger.Component(log, "speech"))

	s := &session{
		out:      out,
		log:      log,
		notifier: notifier,
		engine:   engine,
		rec: recorder.New(engine, d.scorer.WithNotifier(notifier), d.guard.WithNotifier(notifier), recorder.Options{
			InterviewID: in.ID,
			UserID:      config.User,
			Notifier:    notifier,
			Logger:      log,
		}),
		cameras: devices.NewEnumerator(devices.NewV4L2Platform(), notifier, logger.Component(log, "devices")),
		camera:  devices.NewCamera(devices.FileAcquirer{}, notifier, logger.Component(log, "camera")),
	}
	defer s.rec.Close()
	defer s.camera.Disable()

	if noCamera, _ := cmd.Flags().GetBool("no-camera"); !noCamera {
		// Failure is already reported to the user; practice goes on without video.
		_ = s.cameras.Init(ctx)
	}

	log.Info("starting practice",
		zap.String("interview_id", in.ID),
		zap.String("position", in.Position),
		zap.Int("questions", len(in.Questions)),
	)

	for i, q := range in.Questions {
		s.rec.SetQuestion(q)
		fmt.Fprintf(out, "\nQuestion %d/%d: %s\n", i+1, len(in.Questions), q.Question)

		if err := s.answer(ctx); err != nil {
			if errors.Is(err, errQuit) {
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}

	fmt.Fprintf(out, "\nAll questions done. Run `%s feedback %s` to see your results.\n", app, in.ID)
}

// answer runs the action loop for the current question until the user moves on.
func (s *session) answer(ctx context.Context) error {
	for {
		snap := s.rec.Snapshot()
		s.show(snap)

		toggle := PromptStart
		if s.engine.Recording() {
			toggle = PromptStop
		}

		items := []string{toggle}
		if s.engine.Recording() {
			items = append(items, PromptSpeak, PromptTranscriptFile)
		}
		items = append(items, PromptRecordAgain)
		if snap.State == recorder.ReviewReady {
			items = append(items, PromptSave)
		}
		items = append(items, PromptWebcam, PromptCamera, PromptNext, PromptQuit)

		actionPrompt := promptui.Select{
			Label: fmt.Sprintf("State: %s", snap.State),
			Items: items,
			Size:  len(items),
		}

		_, action, err := actionPrompt.Run()
		if err != nil {
			return err
		}

		if err := s.handleAction(ctx, action); err != nil {
			switch {
			case errors.Is(err, errNextQuestion):
				return nil
			case errors.Is(err, errQuit), errors.Is(err, promptui.ErrInterrupt):
				return errQuit
			default:
				// Recorder refusals are already shown as notices.
				s.log.Debug("action not applied", zap.String("action", action), zap.Error(err))
			}
		}
	}
}

func (s *session) handleAction(ctx context.Context, action string) error {
	switch action {
	case PromptStart, PromptStop:
		return s.rec.Toggle(ctx)
	case PromptSpeak:
		line, err := (&promptui.Prompt{Label: "You say"}).Run()
		if err != nil {
			return err
		}
		return s.engine.Feed(line)
	case PromptTranscriptFile:
		path, err := (&promptui.Prompt{Label: "Transcript file"}).Run()
		if err != nil {
			return err
		}
		f, err := os.Open(strings.TrimSpace(path))
		if err != nil {
			s.notifier.Notify(notify.Error("Error", fmt.Sprintf("Unable to open %s.", path)))
			return err
		}
		defer f.Close()
		return s.engine.Consume(ctx, f)
	case PromptRecordAgain:
		return s.rec.RecordAgain()
	case PromptSave:
		res, err := s.rec.Save(ctx)
		if err != nil {
			return err
		}
		if res.Saved {
			return errNextQuestion
		}
		return nil
	case PromptWebcam:
		return s.toggleWebcam(ctx)
	case PromptCamera:
		return s.selectCamera(ctx)
	case PromptNext:
		return errNextQuestion
	case PromptQuit:
		return errQuit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *session) show(snap recorder.Snapshot) {
	answer := snap.Answer
	if answer == "" {
		answer = "Start recording to see your answer here..."
	}
	fmt.Fprintf(s.out, "Your answer: %s\n", answer)
	if snap.Interim != "" {
		fmt.Fprintf(s.out, "Current speech: %s\n", snap.Interim)
	}
	if snap.Result != nil {
		fmt.Fprintf(s.out, "Rating: %g/10\nFeedback: %s\n", snap.Result.Ratings, snap.Result.Feedback)
	}

	webcam := "off"
	if s.camera.Enabled() {
		webcam = "on (" + s.camera.DeviceID() + ")"
	}
	fmt.Fprintf(s.out, "Webcam: %s\n", webcam)
}

func (s *session) toggleWebcam(ctx context.Context) error {
	if s.camera.Enabled() {
		s.camera.Disable()
		return nil
	}
	d, ok := s.cameras.Selected()
	if !ok {
		return devices.ErrNoDevice
	}
	return s.camera.Enable(ctx, d.ID)
}

func (s *session) selectCamera(ctx context.Context) error {
	list := s.cameras.Devices()
	if len(list) == 0 {
		return devices.ErrNoDevice
	}

	labels := make([]string, 0, len(list))
	for _, d := range list {
		labels = append(labels, d.Name())
	}

	idx, _, err := (&promptui.Select{Label: "Select a camera", Items: labels}).Run()
	if err != nil {
		return err
	}

	selected, err := s.cameras.Select(list[idx].ID)
	if err != nil {
		return err
	}
	return s.camera.Switch(ctx, selected.ID)
}
