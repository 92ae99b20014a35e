package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ludo-technologies/treerate/domain"
)

// ErrorCategorizerImpl implements the ErrorCategorizer interface
type ErrorCategorizerImpl struct {
	codes    map[string]domain.ErrorCategory
	patterns []categoryPatterns
}

// categoryPatterns lists message fragments that identify a category.
// Order matters: the first matching category wins.
type categoryPatterns struct {
	category domain.ErrorCategory
	patterns []string
}

// NewErrorCategorizer creates a new error categorizer
func NewErrorCategorizer() domain.ErrorCategorizer {
	return &ErrorCategorizerImpl{
		codes:    initializeErrorCodes(),
		patterns: initializeErrorPatterns(),
	}
}

func initializeErrorCodes() map[string]domain.ErrorCategory {
	return map[string]domain.ErrorCategory{
		domain.ErrCodeInvalidInput:      domain.ErrorCategoryInput,
		domain.ErrCodeFileNotFound:      domain.ErrorCategoryInput,
		domain.ErrCodeEmptyReference:    domain.ErrorCategoryInput,
		domain.ErrCodeParseError:        domain.ErrorCategoryProcessing,
		domain.ErrCodeStructural:        domain.ErrorCategoryProcessing,
		domain.ErrCodeAnalysisError:     domain.ErrorCategoryProcessing,
		domain.ErrCodeCostModel:         domain.ErrorCategoryConfig,
		domain.ErrCodeConfigError:       domain.ErrorCategoryConfig,
		domain.ErrCodeOutputError:       domain.ErrorCategoryOutput,
		domain.ErrCodeUnsupportedFormat: domain.ErrorCategoryOutput,
	}
}

func initializeErrorPatterns() []categoryPatterns {
	return []categoryPatterns{
		{domain.ErrorCategoryTimeout, []string{
			"timeout",
			"timed out",
			"deadline",
			"context canceled",
		}},
		{domain.ErrorCategoryConfig, []string{
			"config",
			"toml",
			"unknown root policy",
			"unknown cost model",
		}},
		{domain.ErrorCategoryInput, []string{
			"invalid input",
			"no documents found",
			"no such file",
			"not found",
			"permission denied",
			"directory",
		}},
		{domain.ErrorCategoryProcessing, []string{
			"parse",
			"syntax",
			"malformed tree",
			"nested deeper",
			"empty document",
		}},
		{domain.ErrorCategoryOutput, []string{
			"write",
			"output",
			"format",
			"cannot create",
		}},
	}
}

// Categorize determines the category of an error. Domain error codes are
// checked first, then the message is matched against known fragments.
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	category := domain.ErrorCategoryUnknown
	var domainErr domain.DomainError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		category = domain.ErrorCategoryTimeout
	case errors.As(err, &domainErr) && ec.codes[domainErr.Code] != "":
		category = ec.codes[domainErr.Code]
	default:
		errMsg := strings.ToLower(err.Error())
		for _, entry := range ec.patterns {
			if containsAnyPattern(errMsg, entry.patterns) {
				category = entry.category
				break
			}
		}
	}

	message := err.Error()
	if category != domain.ErrorCategoryUnknown {
		message = ec.getCategoryMessage(category)
	}
	return &domain.CategorizedError{
		Category: category,
		Message:  message,
		Original: err,
	}
}

// GetRecoverySuggestions returns recovery suggestions for an error category
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	switch category {
	case domain.ErrorCategoryInput:
		return []string{
			"Check that the reference and hypothesis paths exist",
			"Pass two files or two directories, not one of each",
			"Check --include and --exclude if a directory yields no documents",
			"A reference document must contain at least one key",
		}
	case domain.ErrorCategoryConfig:
		return []string{
			"Verify the values in .treerate.toml",
			"Try: treerate init to generate a valid config file",
			"Cost weights must be finite and not negative",
		}
	case domain.ErrorCategoryTimeout:
		return []string{
			"Increase --timeout or score fewer documents at once",
			"Very large documents take quadratic memory per pair",
		}
	case domain.ErrorCategoryOutput:
		return []string{
			"Check write permissions for the output file",
			"Use one of --json, --yaml or --csv, or the default text output",
		}
	case domain.ErrorCategoryProcessing:
		return []string{
			"Check that every document is valid JSON or YAML",
			"Force the input format with --input-format if detection guesses wrong",
		}
	case domain.ErrorCategoryUnknown:
		return []string{
			"Run with --verbose for detailed error information",
			"Report the issue if it persists",
		}
	default:
		return []string{"Check the error message for more details"}
	}
}

// getCategoryMessage returns a user-friendly message for an error category
func (ec *ErrorCategorizerImpl) getCategoryMessage(category domain.ErrorCategory) string {
	switch category {
	case domain.ErrorCategoryInput:
		return "Failed to read the input documents"
	case domain.ErrorCategoryConfig:
		return "Configuration file or settings error"
	case domain.ErrorCategoryTimeout:
		return "Scoring timed out"
	case domain.ErrorCategoryOutput:
		return "Failed to generate or write output"
	case domain.ErrorCategoryProcessing:
		return "Failed to parse or score a document"
	case domain.ErrorCategoryUnknown:
		return "An unexpected error occurred"
	default:
		return "An error occurred"
	}
}

// containsAnyPattern checks if a string contains any of the given patterns
func containsAnyPattern(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(str, pattern) {
			return true
		}
	}
	return false
}
