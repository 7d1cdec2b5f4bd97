package webmo

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chemtools/webmo-go/webmo/result"
)

// Job statuses the service reports. Only complete and failed are terminal.
const (
	StatusQueued   = "queued"
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// IsTerminalStatus reports whether a job in the given status will never
// transition again. The match is exact: any other value keeps polling.
func IsTerminalStatus(status string) bool {
	return status == StatusComplete || status == StatusFailed
}

// Job is one entry of the jobs resource.
type Job struct {
	Number   int    `json:"jobNumber"`
	Name     string `json:"jobName"`
	Engine   string `json:"engine"`
	Status   string `json:"jobStatus"`
	FolderID int    `json:"folderID"`
}

// JobFilter narrows a Jobs listing. Zero-value fields are not applied.
type JobFilter struct {
	Engine     string
	Status     string
	FolderID   string // folder ID, not name
	JobName    string
	TargetUser string
}

// Jobs lists jobs owned by the current user (or TargetUser, for
// administrative users) that satisfy the filter.
func (c *Client) Jobs(ctx context.Context, filter JobFilter) ([]Job, error) {
	query := url.Values{}
	query.Set("engine", filter.Engine)
	query.Set("status", filter.Status)
	query.Set("folderID", filter.FolderID)
	query.Set("jobName", filter.JobName)
	query.Set("user", filter.TargetUser)

	var out struct {
		Jobs []Job `json:"jobs"`
	}
	if err := c.getJSON(ctx, "/jobs", query, &out); err != nil {
		return nil, err
	}
	return out.Jobs, nil
}

// JobInfo returns the raw information document for one job.
func (c *Client) JobInfo(ctx context.Context, jobNumber int) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, jobPath(jobNumber), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// JobStatus extracts the status string from the job's information document.
func (c *Client) JobStatus(ctx context.Context, jobNumber int) (string, error) {
	info, err := c.JobInfo(ctx, jobNumber)
	if err != nil {
		return "", err
	}
	props, _ := info["properties"].(map[string]any)
	status, _ := props["jobStatus"].(string)
	if status == "" {
		return "", fmt.Errorf("webmo: job %d information document carries no jobStatus", jobNumber)
	}
	return status, nil
}

// JobResults fetches the parsed calculation results of one job, the
// properties normally shown on the View Job page.
func (c *Client) JobResults(ctx context.Context, jobNumber int) (*result.Document, error) {
	data, err := c.do(ctx, http.MethodGet, jobPath(jobNumber)+"/results", nil, nil, "")
	if err != nil {
		return nil, err
	}
	return result.Parse(data)
}

// BatchJobResults fetches the results of several jobs in one call.
func (c *Client) BatchJobResults(ctx context.Context, jobNumbers ...int) ([]*result.Document, error) {
	if len(jobNumbers) == 0 {
		return nil, ErrNoJobNumbers
	}
	query := url.Values{}
	query.Set("jobNumber", joinJobNumbers(jobNumbers))

	data, err := c.do(ctx, http.MethodGet, "/jobs/results", query, nil, "")
	if err != nil {
		return nil, err
	}
	return result.ParseList(data)
}

// JobGeometry returns the final optimized geometry of the job as an
// XYZ-formatted string.
func (c *Client) JobGeometry(ctx context.Context, jobNumber int) (string, error) {
	var out struct {
		XYZ string `json:"xyz"`
	}
	if err := c.getJSON(ctx, jobPath(jobNumber)+"/geometry", nil, &out); err != nil {
		return "", err
	}
	return out.XYZ, nil
}

// jobGeometryDocument returns the geometry resource body verbatim, for
// forwarding to the rendering surface.
func (c *Client) jobGeometryDocument(ctx context.Context, jobNumber int) ([]byte, error) {
	return c.do(ctx, http.MethodGet, jobPath(jobNumber)+"/geometry", nil, nil, "")
}

// JobOutput returns the raw textual output file of the job.
func (c *Client) JobOutput(ctx context.Context, jobNumber int) (string, error) {
	return c.getText(ctx, jobPath(jobNumber)+"/raw_output", nil)
}

// JobArchive generates and returns a WebMO archive (tar/zip) of the given
// jobs, appropriate for saving to disk.
func (c *Client) JobArchive(ctx context.Context, jobNumbers ...int) ([]byte, error) {
	if len(jobNumbers) == 0 {
		return nil, ErrNoJobNumbers
	}
	query := url.Values{}
	query.Set("jobNumber", joinJobNumbers(jobNumbers))
	return c.do(ctx, http.MethodGet, "/jobs/archive", query, nil, "")
}

// JobSpreadsheet generates and returns a CSV spreadsheet summary of the
// given jobs.
func (c *Client) JobSpreadsheet(ctx context.Context, jobNumbers ...int) (string, error) {
	if len(jobNumbers) == 0 {
		return "", ErrNoJobNumbers
	}
	query := url.Values{}
	query.Set("jobNumber", joinJobNumbers(jobNumbers))
	return c.getText(ctx, "/jobs/spreadsheet", query)
}

// DeleteJob permanently deletes the job.
func (c *Client) DeleteJob(ctx context.Context, jobNumber int) error {
	_, err := c.do(ctx, http.MethodDelete, jobPath(jobNumber), nil, nil, "")
	return err
}

// SubmitOptions carries the optional scheduling parameters of SubmitJob.
type SubmitOptions struct {
	Queue string
	Nodes int // defaults to 1
	PPN   int // cores per node, defaults to 1

	// Extra holds scheduler-specific fields such as nodeType (PBS),
	// resourceList (SGE/SLURM), timeLimit or gpus (SLURM).
	Extra map[string]string
}

// SubmitJob submits a new job to a computational engine and returns its job
// number. Locally invalid arguments are rejected with *SubmissionError;
// server-side rejections surface as *TransportError.
func (c *Client) SubmitJob(ctx context.Context, jobName, inputFileContents, engine string, opts *SubmitOptions) (int, error) {
	if jobName == "" {
		return 0, &SubmissionError{Reason: "job name must not be empty"}
	}
	if engine == "" {
		return 0, &SubmissionError{Reason: "engine must not be empty"}
	}
	if inputFileContents == "" {
		return 0, &SubmissionError{Reason: "input file contents must not be empty"}
	}
	if opts == nil {
		opts = &SubmitOptions{}
	}
	nodes, ppn := opts.Nodes, opts.PPN
	if nodes <= 0 {
		nodes = 1
	}
	if ppn <= 0 {
		ppn = 1
	}

	form := url.Values{}
	form.Set("jobName", jobName)
	form.Set("engine", engine)
	form.Set("inputFile", inputFileContents)
	form.Set("queue", opts.Queue)
	form.Set("nodes", strconv.Itoa(nodes))
	form.Set("ppn", strconv.Itoa(ppn))
	for k, v := range opts.Extra {
		form.Set(k, v)
	}

	var out struct {
		JobNumber int `json:"jobNumber"`
	}
	if err := c.postForm(ctx, "/jobs", form, &out); err != nil {
		return 0, err
	}
	return out.JobNumber, nil
}

// ImportJob uploads an existing computational output file, which the
// service parses into a new job, and returns the new job number.
func (c *Client) ImportJob(ctx context.Context, jobName, filename, engine string) (int, error) {
	if jobName == "" {
		return 0, &SubmissionError{Reason: "job name must not be empty"}
	}
	if engine == "" {
		return 0, &SubmissionError{Reason: "engine must not be empty"}
	}

	contents, err := os.ReadFile(filename)
	if err != nil {
		return 0, fmt.Errorf("reading output file %s: %w", filename, err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := c.params(url.Values{"jobName": {jobName}, "engine": {engine}})
	for k, vs := range fields {
		for _, v := range vs {
			if err := mw.WriteField(k, v); err != nil {
				return 0, fmt.Errorf("encoding import request: %w", err)
			}
		}
	}
	fw, err := mw.CreateFormFile("outputFile", filepath.Base(filename))
	if err != nil {
		return 0, fmt.Errorf("encoding import request: %w", err)
	}
	if _, err := fw.Write(contents); err != nil {
		return 0, fmt.Errorf("encoding import request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return 0, fmt.Errorf("encoding import request: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/jobs", nil, &body, mw.FormDataContentType())
	if err != nil {
		return 0, err
	}
	var out struct {
		JobNumber int `json:"jobNumber"`
	}
	if err := unmarshalResponse(data, "/jobs", &out); err != nil {
		return 0, err
	}
	return out.JobNumber, nil
}

func jobPath(jobNumber int) string {
	return "/jobs/" + strconv.Itoa(jobNumber)
}

func joinJobNumbers(jobNumbers []int) string {
	parts := make([]string, len(jobNumbers))
	for i, n := range jobNumbers {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
