package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"synergy-alloc/internal/models"
)

// IntakeClient pulls the patient snapshot CSV from a remote intake
// service endpoint.
type IntakeClient struct {
	httpClient *resty.Client
	loader     *Loader
	logger     *zap.Logger
}

func NewIntakeClient(baseURL string, loader *Loader, logger *zap.Logger) *IntakeClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second)

	return &IntakeClient{
		httpClient: client,
		loader:     loader,
		logger:     logger,
	}
}

// FetchPatients downloads and decodes the patient CSV snapshot.
func (c *IntakeClient) FetchPatients(ctx context.Context) ([]models.Patient, error) {
	resp, err := c.httpClient.R().SetContext(ctx).Get("")
	if err != nil {
		return nil, fmt.Errorf("intake fetch failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("intake fetch failed: status %d", resp.StatusCode())
	}

	patients, err := c.loader.ParsePatientsCSV(resp.Body())
	if err != nil {
		return nil, err
	}
	c.logger.Info("Fetched patient snapshot from intake service",
		zap.Int("patients", len(patients)),
	)
	return patients, nil
}
