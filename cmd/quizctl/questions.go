package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stemsi/quizlink-backend/internal/model"
	"gopkg.in/yaml.v3"
)

func newUploadQuestionsCmd() *cobra.Command {
	var (
		file  string
		title string
	)
	cmd := &cobra.Command{
		Use:   "upload-questions",
		Short: "Create a quiz from a JSON or YAML question file and make it current",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readQuestionFile(file)
			if err != nil {
				return err
			}
			if title != "" {
				req.Title = title
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				resp, err := a.quizzes.Upload(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %q (%s) with %d questions\n", resp.Title, resp.QuizID, resp.QuestionCount)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "question file (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&title, "title", "", "quiz title, overrides the file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newQuizStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quiz-status",
		Short: "Show the current quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				status, err := a.quizzes.Status(ctx)
				if err != nil {
					return err
				}
				if !status.Available {
					fmt.Fprintln(cmd.OutOrStdout(), "No quiz uploaded")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %q  active=%t\n", status.ID, status.Title, status.IsActive)
				return nil
			})
		},
	}
}

// readQuestionFile accepts either an object {title, questions} or a bare
// list of questions.
func readQuestionFile(path string) (model.UploadQuestionsRequest, error) {
	var req model.UploadQuestionsRequest

	raw, err := os.ReadFile(path)
	if err != nil {
		return req, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		var node yaml.Node
		if err := yaml.Unmarshal(raw, &node); err != nil {
			return req, fmt.Errorf("parse %s: %w", path, err)
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			err = node.Decode(&req.Questions)
		} else {
			err = node.Decode(&req)
		}
		if err != nil {
			return req, fmt.Errorf("decode %s: %w", path, err)
		}
	case ".json":
		trimmed := strings.TrimSpace(string(raw))
		if strings.HasPrefix(trimmed, "[") {
			err = json.Unmarshal(raw, &req.Questions)
		} else {
			err = json.Unmarshal(raw, &req)
		}
		if err != nil {
			return req, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return req, fmt.Errorf("unsupported question file extension %q", ext)
	}
	return req, nil
}
