// Package agent wraps the Bedrock Agent runtime for conversational
// question answering over analyzed videos.
package agent

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	agenttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"go.uber.org/zap"

	"github.com/gameplay-insights/backend/pkg/apperrs"
)

// Client invokes the configured Bedrock Agent and collects its streamed
// reply. No timeout is enforced beyond the caller's context.
type Client struct {
	runtime      *bedrockagentruntime.Client
	agentID      string
	agentAliasID string
	logger       *zap.Logger
}

// New creates an agent client. An empty agentID leaves the agent path
// unconfigured; Invoke then fails with AgentNotConfiguredError.
func New(awsCfg aws.Config, agentID, agentAliasID string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		runtime:      bedrockagentruntime.NewFromConfig(awsCfg),
		agentID:      agentID,
		agentAliasID: agentAliasID,
		logger:       logger,
	}
}

// Configured reports whether an agent identifier is set.
func (c *Client) Configured() bool { return c.agentID != "" }

// Invoke sends the input text to the agent under the given conversation
// session and returns the full reply, concatenating streamed chunks in
// arrival order. attrs, when non-empty, are attached as session attributes
// (conversation-scoped state such as the video's storage location).
func (c *Client) Invoke(ctx context.Context, sessionID, inputText string, attrs map[string]string) (string, error) {
	if c.agentID == "" {
		return "", &apperrs.AgentNotConfiguredError{}
	}

	input := &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(c.agentID),
		AgentAliasId: aws.String(c.agentAliasID),
		SessionId:    aws.String(sessionID),
		InputText:    aws.String(inputText),
	}
	if len(attrs) > 0 {
		input.SessionState = &agenttypes.SessionState{SessionAttributes: attrs}
	}

	out, err := c.runtime.InvokeAgent(ctx, input)
	if err != nil {
		return "", err
	}
	stream := out.GetStream()
	defer stream.Close()

	var reply strings.Builder
	for event := range stream.Events() {
		if chunk, ok := event.(*agenttypes.ResponseStreamMemberChunk); ok {
			reply.Write(chunk.Value.Bytes)
		}
	}
	if err := stream.Err(); err != nil {
		return "", err
	}
	c.logger.Debug("agent reply collected",
		zap.String("session_id", sessionID),
		zap.Int("reply_len", reply.Len()))
	return reply.String(), nil
}
