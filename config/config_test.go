package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameplay-insights/backend/pkg/apperrs"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_BUCKET_NAME", "gameplay-videos")
	t.Setenv("DATA_AUTOMATION_PROFILE_ARN", "arn:aws:bedrock:us-east-1:123:data-automation-profile/p")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, AnalysisModeSync, cfg.Analysis.Mode)
	assert.Equal(t, 30*time.Second, cfg.Analysis.PollInterval)
	assert.Equal(t, 30*time.Minute, cfg.Analysis.MaxWait)
	assert.Equal(t, "TSTALIASID", cfg.Bedrock.AgentAliasID)
	assert.Empty(t, cfg.Bedrock.AgentID)
}

func TestLoadFailsFastOnMissingRequired(t *testing.T) {
	cases := []string{"AWS_REGION", "AWS_BUCKET_NAME", "DATA_AUTOMATION_PROFILE_ARN"}
	for _, missing := range cases {
		t.Run(missing, func(t *testing.T) {
			setRequired(t)
			t.Setenv(missing, "")

			_, err := Load()
			var cfgErr *apperrs.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, missing, cfgErr.Key)
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ANALYSIS_MODE", AnalysisModeBackground)
	t.Setenv("ANALYSIS_POLL_INTERVAL_SEC", "5")
	t.Setenv("ANALYSIS_MAX_WAIT_SEC", "60")
	t.Setenv("BEDROCK_AGENT_ID", "AGENT123")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, AnalysisModeBackground, cfg.Analysis.Mode)
	assert.Equal(t, 5*time.Second, cfg.Analysis.PollInterval)
	assert.Equal(t, time.Minute, cfg.Analysis.MaxWait)
	assert.Equal(t, "AGENT123", cfg.Bedrock.AgentID)
}
