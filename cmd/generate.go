package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/mockwise/internal/interview"
	"github.com/spigell/mockwise/internal/model"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and store a new mock interview for a job",
	Run: func(cmd *cobra.Command, _ []string) {
		generate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("position", "", "job position")
	generateCmd.Flags().String("description", "", "job description")
	generateCmd.Flags().Int("experience", 0, "years of experience required")
	generateCmd.Flags().String("tech-stack", "", "comma separated tech stack")
	generateCmd.Flags().StringP("out", "o", "", "also write the interview to this YAML file")
	generateCmd.Flags().Int("questions", 0, "number of questions to generate (default 5)")

	viper.BindPFlag("ai.questions", generateCmd.Flags().Lookup("questions"))
}

func generate(cmd *cobra.Command) {
	ctx := context.Background()
	config, log := setup()

	if config.User == "" {
		log.Fatal("user is required", zap.String("hint", "set --user, MOCKWISE_USER or the 'user' key in the configuration file"))
	}

	d, err := buildDeps(ctx, config, log, true)
	if err != nil {
		log.Fatal("building dependencies", zap.Error(err))
	}
	defer d.Close()

	flags := cmd.Flags()
	profile := model.JobProfile{}
	profile.Position, _ = flags.GetString("position")
	profile.Description, _ = flags.GetString("description")
	profile.Experience, _ = flags.GetInt("experience")
	profile.TechStack, _ = flags.GetString("tech-stack")

	created, err := d.interviews.WithNotifier(newConsoleNotifier(cmd.OutOrStdout(), log)).Create(ctx, config.User, profile)
	if err != nil {
		if errors.Is(err, interview.ErrInvalidProfile) {
			for _, fe := range interview.FieldErrors(err) {
				log.Error("invalid profile", zap.String("field", fe.Field), zap.String("reason", fe.Message))
			}
			os.Exit(1)
		}
		log.Fatal("creating interview", zap.Error(err))
	}

	log.Info("interview created",
		zap.String("interview_id", created.ID),
		zap.Int("questions", len(created.Questions)),
	)
	for _, q := range created.Questions {
		fmt.Fprintf(cmd.OutOrStdout(), "%s. %s\n", q.ID, q.Question)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return
	}
	if err := writeInterviewFile(out, created); err != nil {
		log.Fatal("writing interview file", zap.Error(err))
	}
	log.Info("interview written to file", zap.String("filename", out))
}

func writeInterviewFile(path string, in model.Interview) error {
	data, err := yaml.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal interview: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func readInterviewFile(path string) (model.Interview, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Interview{}, err
	}
	defer f.Close()

	var in model.Interview
	if err := yaml.NewDecoder(f).Decode(&in); err != nil {
		return model.Interview{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(in.Questions) == 0 {
		return model.Interview{}, fmt.Errorf("%s has no questions", path)
	}
	return in, nil
}
