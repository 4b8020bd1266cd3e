package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/amirphl/ugc-creator-finder/app/dto"
	"github.com/amirphl/ugc-creator-finder/models"
	"github.com/amirphl/ugc-creator-finder/repository"
	"github.com/amirphl/ugc-creator-finder/utils"
)

// exportColumns is the fixed column order shared by every export format
var exportColumns = []string{
	"Name", "Platform", "Handle", "Profile URL", "Followers",
	"Engagement Rate", "Overall Score", "Engagement Score",
	"Quality Score", "Relevance Score", "Age Range", "Gender",
	"Bio", "Notes",
}

// CampaignFlow represents campaign curation use cases
type CampaignFlow interface {
	CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CampaignDTO, error)
	ListCampaigns(ctx context.Context, metadata *ClientMetadata) (*dto.ListCampaignsResponse, error)
	GetCampaign(ctx context.Context, campaignUUID string, metadata *ClientMetadata) (*dto.CampaignDetailResponse, error)
	UpdateCampaign(ctx context.Context, campaignUUID string, req *dto.UpdateCampaignRequest, metadata *ClientMetadata) (*dto.CampaignDTO, error)
	DeleteCampaign(ctx context.Context, campaignUUID string, metadata *ClientMetadata) error
	AddCreator(ctx context.Context, campaignUUID string, req *dto.AddCampaignCreatorRequest, metadata *ClientMetadata) (*dto.CampaignCreatorDTO, error)
	RemoveCreator(ctx context.Context, campaignUUID string, creatorID uint, metadata *ClientMetadata) error
	ExportCampaign(ctx context.Context, campaignUUID, format string, metadata *ClientMetadata) (*dto.CampaignExport, error)
}

// CampaignFlowImpl implements CampaignFlow
type CampaignFlowImpl struct {
	campaignRepo repository.CampaignRepository
	linkRepo     repository.CampaignCreatorRepository
	creatorRepo  repository.CreatorRepository
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	linkRepo repository.CampaignCreatorRepository,
	creatorRepo repository.CreatorRepository,
) CampaignFlow {
	return &CampaignFlowImpl{
		campaignRepo: campaignRepo,
		linkRepo:     linkRepo,
		creatorRepo:  creatorRepo,
	}
}

func (f *CampaignFlowImpl) CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CampaignDTO, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, NewBusinessError("CAMPAIGN_NAME_REQUIRED", "Campaign name is required", ErrCampaignNameRequired)
	}

	campaign := &models.Campaign{
		UUID:      uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Filters:   models.CampaignFilters(req.Filters),
		CreatedAt: utils.UTCNow(),
	}
	if err := f.campaignRepo.Save(ctx, campaign); err != nil {
		return nil, NewBusinessError("CAMPAIGN_CREATE_FAILED", "Failed to create campaign", err)
	}

	log.Printf("campaign: created %s (%s)", campaign.Name, campaign.UUID)
	return f.toCampaignDTO(campaign, 0), nil
}

// ListCampaigns returns every campaign newest first, each with its
// creator count
func (f *CampaignFlowImpl) ListCampaigns(ctx context.Context, metadata *ClientMetadata) (*dto.ListCampaignsResponse, error) {
	campaigns, err := f.campaignRepo.ByFilter(ctx, models.CampaignFilter{}, "created_at DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
	}

	out := make([]dto.CampaignDTO, 0, len(campaigns))
	for _, campaign := range campaigns {
		count, err := f.linkRepo.Count(ctx, models.CampaignCreatorFilter{CampaignID: &campaign.ID})
		if err != nil {
			return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to count campaign creators", err)
		}
		out = append(out, *f.toCampaignDTO(campaign, int(count)))
	}

	return &dto.ListCampaignsResponse{Campaigns: out, Total: int64(len(out))}, nil
}

func (f *CampaignFlowImpl) GetCampaign(ctx context.Context, campaignUUID string, metadata *ClientMetadata) (*dto.CampaignDetailResponse, error) {
	campaign, err := f.loadCampaign(ctx, campaignUUID)
	if err != nil {
		return nil, err
	}

	links, err := f.linkRepo.ListByCampaign(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to load campaign creators", err)
	}

	creators := make([]dto.CampaignCreatorDTO, 0, len(links))
	for _, link := range links {
		if link.Creator == nil {
			continue
		}
		creators = append(creators, dto.CampaignCreatorDTO{
			Creator: *link.Creator,
			Notes:   link.Notes,
			AddedAt: link.AddedAt.UTC().Format(time.RFC3339),
		})
	}

	return &dto.CampaignDetailResponse{
		Campaign: *f.toCampaignDTO(campaign, len(creators)),
		Creators: creators,
	}, nil
}

func (f *CampaignFlowImpl) UpdateCampaign(ctx context.Context, campaignUUID string, req *dto.UpdateCampaignRequest, metadata *ClientMetadata) (*dto.CampaignDTO, error) {
	campaign, err := f.loadCampaign(ctx, campaignUUID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, NewBusinessError("CAMPAIGN_NAME_REQUIRED", "Campaign name is required", ErrCampaignNameRequired)
		}
		campaign.Name = name
	}
	if req.Filters != nil {
		campaign.Filters = models.CampaignFilters(req.Filters)
	}

	if err := f.campaignRepo.Save(ctx, campaign); err != nil {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_FAILED", "Failed to update campaign", err)
	}

	count, err := f.linkRepo.Count(ctx, models.CampaignCreatorFilter{CampaignID: &campaign.ID})
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_FAILED", "Failed to count campaign creators", err)
	}
	return f.toCampaignDTO(campaign, int(count)), nil
}

// DeleteCampaign removes the campaign and its creator links
func (f *CampaignFlowImpl) DeleteCampaign(ctx context.Context, campaignUUID string, metadata *ClientMetadata) error {
	campaign, err := f.loadCampaign(ctx, campaignUUID)
	if err != nil {
		return err
	}

	if err := f.linkRepo.DeleteByCampaign(ctx, campaign.ID); err != nil {
		return NewBusinessError("CAMPAIGN_DELETE_FAILED", "Failed to delete campaign creators", err)
	}
	if err := f.campaignRepo.Delete(ctx, campaign.ID); err != nil {
		return NewBusinessError("CAMPAIGN_DELETE_FAILED", "Failed to delete campaign", err)
	}

	log.Printf("campaign: deleted %s (%s)", campaign.Name, campaign.UUID)
	return nil
}

func (f *CampaignFlowImpl) AddCreator(ctx context.Context, campaignUUID string, req *dto.AddCampaignCreatorRequest, metadata *ClientMetadata) (*dto.CampaignCreatorDTO, error) {
	campaign, err := f.loadCampaign(ctx, campaignUUID)
	if err != nil {
		return nil, err
	}

	creator, err := f.creatorRepo.ByID(ctx, req.CreatorID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_ADD_FAILED", "Failed to load creator", err)
	}
	if creator == nil {
		return nil, NewBusinessErrorf("CREATOR_NOT_FOUND", "Creator %d not found", ErrCreatorNotFound, req.CreatorID)
	}

	existing, err := f.linkRepo.ByCampaignAndCreator(ctx, campaign.ID, creator.ID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_ADD_FAILED", "Failed to check campaign membership", err)
	}
	if existing != nil {
		return nil, NewBusinessError("CREATOR_ALREADY_IN_LIST", "Creator already in campaign", ErrCreatorAlreadyInList)
	}

	link := &models.CampaignCreator{
		CampaignID: campaign.ID,
		CreatorID:  creator.ID,
		Notes:      req.Notes,
		AddedAt:    utils.UTCNow(),
	}
	if err := f.linkRepo.Save(ctx, link); err != nil {
		return nil, NewBusinessError("CAMPAIGN_ADD_FAILED", "Failed to add creator to campaign", err)
	}

	return &dto.CampaignCreatorDTO{
		Creator: *creator,
		Notes:   link.Notes,
		AddedAt: link.AddedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (f *CampaignFlowImpl) RemoveCreator(ctx context.Context, campaignUUID string, creatorID uint, metadata *ClientMetadata) error {
	campaign, err := f.loadCampaign(ctx, campaignUUID)
	if err != nil {
		return err
	}

	link, err := f.linkRepo.ByCampaignAndCreator(ctx, campaign.ID, creatorID)
	if err != nil {
		return NewBusinessError("CAMPAIGN_REMOVE_FAILED", "Failed to check campaign membership", err)
	}
	if link == nil {
		return NewBusinessErrorf("CREATOR_NOT_IN_CAMPAIGN", "Creator %d not in campaign", ErrCreatorNotInCampaign, creatorID)
	}

	if err := f.linkRepo.Delete(ctx, link.ID); err != nil {
		return NewBusinessError("CAMPAIGN_REMOVE_FAILED", "Failed to remove creator from campaign", err)
	}
	return nil
}

// ExportCampaign renders the campaign shortlist as a csv or xlsx file
func (f *CampaignFlowImpl) ExportCampaign(ctx context.Context, campaignUUID, format string, metadata *ClientMetadata) (*dto.CampaignExport, error) {
	campaign, err := f.loadCampaign(ctx, campaignUUID)
	if err != nil {
		return nil, err
	}

	links, err := f.linkRepo.ListByCampaign(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_EXPORT_FAILED", "Failed to load campaign creators", err)
	}

	rows := make([][]string, 0, len(links))
	for _, link := range links {
		if link.Creator == nil {
			continue
		}
		rows = append(rows, exportRow(link.Creator, link.Notes))
	}

	base := "campaign_" + strings.ReplaceAll(campaign.Name, " ", "_")
	switch strings.ToLower(format) {
	case "", "csv":
		content, err := renderCSV(rows)
		if err != nil {
			return nil, NewBusinessError("CAMPAIGN_EXPORT_FAILED", "Failed to render csv export", err)
		}
		return &dto.CampaignExport{
			FileName:    base + ".csv",
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case "xlsx":
		content, err := renderXLSX(campaign.Name, rows)
		if err != nil {
			return nil, NewBusinessError("CAMPAIGN_EXPORT_FAILED", "Failed to render xlsx export", err)
		}
		return &dto.CampaignExport{
			FileName:    base + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Content:     content,
		}, nil
	default:
		return nil, NewBusinessErrorf("UNSUPPORTED_EXPORT_FORMAT", "Unsupported export format: %s", ErrUnsupportedExportFormat, format)
	}
}

func (f *CampaignFlowImpl) loadCampaign(ctx context.Context, campaignUUID string) (*models.Campaign, error) {
	if strings.TrimSpace(campaignUUID) == "" {
		return nil, NewBusinessError("CAMPAIGN_UUID_REQUIRED", "Campaign uuid is required", ErrCampaignUUIDRequired)
	}

	campaign, err := f.campaignRepo.ByUUID(ctx, campaignUUID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to load campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessErrorf("CAMPAIGN_NOT_FOUND", "Campaign %s not found", ErrCampaignNotFound, campaignUUID)
	}
	return campaign, nil
}

func (f *CampaignFlowImpl) toCampaignDTO(campaign *models.Campaign, creatorCount int) *dto.CampaignDTO {
	return &dto.CampaignDTO{
		ID:           campaign.ID,
		UUID:         campaign.UUID.String(),
		Name:         campaign.Name,
		Filters:      campaign.Filters,
		CreatorCount: creatorCount,
		CreatedAt:    campaign.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func exportRow(c *models.Creator, notes string) []string {
	ageRange := ""
	if c.EstimatedAgeRange != nil {
		ageRange = *c.EstimatedAgeRange
	}
	gender := ""
	if c.Gender != nil {
		gender = *c.Gender
	}
	return []string{
		c.Name,
		c.Platform,
		c.Handle,
		c.ProfileURL,
		strconv.Itoa(c.FollowerCount),
		fmt.Sprintf("%.2f", c.EngagementRate),
		fmt.Sprintf("%.1f", c.OverallScore),
		fmt.Sprintf("%.1f", c.EngagementScore),
		fmt.Sprintf("%.1f", c.QualityScore),
		fmt.Sprintf("%.1f", c.RelevanceScore),
		ageRange,
		gender,
		c.Bio,
		notes,
	}
}

func renderCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportColumns); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXLSX(sheetName string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheetName != "" {
		// sheet names cap at 31 chars in the xlsx format
		name := sheetName
		if len(name) > 31 {
			name = name[:31]
		}
		if err := f.SetSheetName(sheet, name); err == nil {
			sheet = name
		}
	}

	for col, header := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for r, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
