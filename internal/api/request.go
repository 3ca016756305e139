package api

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/StephenStolk/analyseX-sub001/adapters/excel"
	domain "github.com/StephenStolk/analyseX-sub001/domain/dataset"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"
	"github.com/StephenStolk/analyseX-sub001/internal/dataset"
	"github.com/StephenStolk/analyseX-sub001/internal/errors"
)

// analysisRequest carries the dataset and the parameters of every endpoint
type analysisRequest struct {
	Name               string       `json:"name"`
	Columns            []string     `json:"columns"`
	Rows               []domain.Row `json:"rows"`
	Column             string       `json:"column"`
	X                  string       `json:"x"`
	Y                  string       `json:"y"`
	TimeColumn         string       `json:"time_column"`
	ValueColumn        string       `json:"value_column"`
	Horizon            int          `json:"horizon"`
	Method             string       `json:"method"`
	Threshold          float64      `json:"threshold"`
	CorrelationColumns []string     `json:"correlation_columns"`
	Features           []string     `json:"features"` // clustering, driver and column-wise group test inputs
	Target             string       `json:"target"`
	GroupBy            string       `json:"group_by"`
	K                  int          `json:"k"`
	Narrate            bool         `json:"narrate"`
	Save               bool         `json:"save"`
}

// decode reads a JSON body or a multipart upload and builds the dataset
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*analysisRequest, *dataset.Dataset, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return s.decodeUpload(r)
	}

	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, errors.InvalidInput(fmt.Sprintf("invalid JSON body: %v", err))
	}
	if len(req.Rows) == 0 {
		return nil, nil, errors.InvalidInput("rows are required")
	}
	var ds *dataset.Dataset
	if len(req.Columns) > 0 {
		ds = dataset.NewWithColumns(req.Columns, req.Rows, s.config.Dataset)
	} else {
		ds = dataset.New(req.Rows, s.config.Dataset)
	}
	return &req, ds, nil
}

func (s *Server) decodeUpload(r *http.Request) (*analysisRequest, *dataset.Dataset, error) {
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		return nil, nil, errors.InvalidInput(fmt.Sprintf("invalid upload: %v", err))
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errors.InvalidInput("multipart field \"file\" is required")
	}
	defer file.Close()

	data, err := excel.ReadUpload(header.Filename, file, s.config.Reader)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read %s", header.Filename)
	}

	req := &analysisRequest{
		Name:               r.FormValue("name"),
		Column:             r.FormValue("column"),
		X:                  r.FormValue("x"),
		Y:                  r.FormValue("y"),
		TimeColumn:         r.FormValue("time_column"),
		ValueColumn:        r.FormValue("value_column"),
		Method:             r.FormValue("method"),
		CorrelationColumns: splitList(r.FormValue("correlation_columns")),
		Features:           splitList(r.FormValue("features")),
		Target:             r.FormValue("target"),
		GroupBy:            r.FormValue("group_by"),
		Narrate:            formBool(r.FormValue("narrate")),
		Save:               formBool(r.FormValue("save")),
	}
	if req.Name == "" {
		req.Name = header.Filename
	}
	if req.Horizon, err = formInt(r.FormValue("horizon")); err != nil {
		return nil, nil, errors.InvalidInput("horizon must be an integer")
	}
	if req.Threshold, err = formFloat(r.FormValue("threshold")); err != nil {
		return nil, nil, errors.InvalidInput("threshold must be a number")
	}
	if req.K, err = formInt(r.FormValue("k")); err != nil {
		return nil, nil, errors.InvalidInput("k must be an integer")
	}
	return req, data.Dataset(s.config.Dataset), nil
}

func (req *analysisRequest) require(fields map[string]string) error {
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return errors.InvalidInput(name + " is required")
		}
	}
	return nil
}

func (req *analysisRequest) forecastMethod() stats.ForecastMethod {
	return stats.ForecastMethod(req.Method)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func formBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

func formInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func formFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
