package api

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/camwatch/history-engine/internal/models"
	"github.com/camwatch/history-engine/internal/utils"
)

// Request field names shared by the gRPC struct payload and the HTTP query string.
const (
	FieldFolder = "folder"
	FieldStart  = "start"
	FieldEnd    = "end"
)

// FromStructRequest maps a gRPC struct payload into a domain AnalysisRequest.
func FromStructRequest(req *structpb.Struct, loc *time.Location) (models.AnalysisRequest, error) {
	if req == nil {
		return models.AnalysisRequest{}, fmt.Errorf("request is nil")
	}
	folder, err := stringField(req, FieldFolder)
	if err != nil {
		return models.AnalysisRequest{}, err
	}
	start, err := stringField(req, FieldStart)
	if err != nil {
		return models.AnalysisRequest{}, err
	}
	end, err := stringField(req, FieldEnd)
	if err != nil {
		return models.AnalysisRequest{}, err
	}
	return buildRequest(folder, start, end, loc)
}

// FolderFromStruct extracts the optional folder of a Today payload.
func FolderFromStruct(req *structpb.Struct) (string, error) {
	if req == nil {
		return "", nil
	}
	return stringField(req, FieldFolder)
}

// FromQuery maps HTTP query parameters into a domain AnalysisRequest.
func FromQuery(values url.Values, loc *time.Location) (models.AnalysisRequest, error) {
	return buildRequest(values.Get(FieldFolder), values.Get(FieldStart), values.Get(FieldEnd), loc)
}

func buildRequest(folder, start, end string, loc *time.Location) (models.AnalysisRequest, error) {
	req := models.AnalysisRequest{Folder: strings.TrimSpace(folder)}
	if strings.TrimSpace(start) != "" {
		t, err := utils.ParseDate(start, loc)
		if err != nil {
			return models.AnalysisRequest{}, fmt.Errorf("start: %w", err)
		}
		req.Range.Start = &t
	}
	if strings.TrimSpace(end) != "" {
		t, err := utils.ParseDate(end, loc)
		if err != nil {
			return models.AnalysisRequest{}, fmt.Errorf("end: %w", err)
		}
		req.Range.End = &t
	}
	return req, nil
}

func stringField(req *structpb.Struct, name string) (string, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return "", nil
	}
	switch v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return v.GetStringValue(), nil
	case *structpb.Value_NullValue:
		return "", nil
	default:
		return "", fmt.Errorf("%s must be a string", name)
	}
}

// ToStructResult converts a domain result into a struct payload mirroring its JSON form.
func ToStructResult(res models.AnalysisResult) (*structpb.Struct, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build struct: %w", err)
	}
	return out, nil
}
