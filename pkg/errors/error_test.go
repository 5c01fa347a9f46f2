package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeEmptyGraph, "graph is empty")
	suite.NotNil(err)
	suite.Equal(ErrCodeEmptyGraph, err.Code)
	suite.Equal("graph is empty", err.Message)
	suite.Nil(err.Cause)
	suite.Empty(err.Details)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeDuplicateNode, "node %s already exists", "ema-1")
	suite.Equal(ErrCodeDuplicateNode, err.Code)
	suite.Equal("node ema-1 already exists", err.Message)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeRenderFailed, "render failed", cause)
	suite.Equal(ErrCodeRenderFailed, err.Code)
	suite.Equal("render failed", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("exit status 2")
	err := Wrapf(ErrCodeRunnerFailed, cause, "%s failed", "backtesting")
	suite.Equal(ErrCodeRunnerFailed, err.Code)
	suite.Equal("backtesting failed", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal("[100] invalid parameter", err.Error())
}

func (suite *ErrorTestSuite) TestErrorStringWithCause() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeRenderFailed, "render failed", cause)
	suite.Equal("[909] render failed: underlying error", err.Error())
}

func (suite *ErrorTestSuite) TestUnwrap() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeRenderFailed, "render failed", cause)
	suite.Equal(cause, err.Unwrap())
	suite.Nil(New(ErrCodeInvalidParameter, "x").Unwrap())
}

func (suite *ErrorTestSuite) TestDetails() {
	err := New(ErrCodeMissingRequiredNodeCategory, "graph is missing required nodes").
		WithDetails("no Enter node", "no Exit node")
	suite.Equal([]string{"no Enter node", "no Exit node"}, err.Details)

	wrapped := fmt.Errorf("export: %w", err)
	suite.Equal([]string{"no Enter node", "no Exit node"}, GetDetails(wrapped))
	suite.Nil(GetDetails(errors.New("plain")))
}

func (suite *ErrorTestSuite) TestGetCode() {
	suite.Equal(ErrCodeCyclicGraph, GetCode(New(ErrCodeCyclicGraph, "cycle")))
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("standard error")))
}

func (suite *ErrorTestSuite) TestGetCodeFromWrapped() {
	cause := New(ErrCodeUnknownNodeType, "unknown node type")
	err := Wrap(ErrCodeInvalidGraphDocument, "invalid document", cause)
	// GetCode should return the outermost error's code
	suite.Equal(ErrCodeInvalidGraphDocument, GetCode(err))
	suite.Equal(ErrCodeEmptyGraph, GetCode(fmt.Errorf("ctx: %w", New(ErrCodeEmptyGraph, "empty"))))
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.True(HasCode(err, ErrCodeInvalidParameter))
	suite.False(HasCode(err, ErrCodeEmptyGraph))
}

func (suite *ErrorTestSuite) TestIsAndAs() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeRunnerFailed, "failed", cause)
	suite.True(Is(err, cause))

	var builderErr *Error
	suite.True(As(err, &builderErr))
	suite.Equal(ErrCodeRunnerFailed, builderErr.Code)
}

func (suite *ErrorTestSuite) TestErrorCodeValues() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(100), ErrCodeInvalidParameter)
	suite.Equal(ErrorCode(900), ErrCodeEmptyGraph)
	suite.Equal(ErrorCode(1000), ErrCodeRunnerFailed)
	suite.Equal(ErrorCode(1100), ErrCodeHistoryUnavailable)
}
