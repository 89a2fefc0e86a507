package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/lumo/internal/models"
	"github.com/example/lumo/internal/services"
	"github.com/example/lumo/internal/storage"
	"github.com/example/lumo/internal/utils"
)

// ServiceHandler manages service listing endpoints.
type ServiceHandler struct {
	db     *gorm.DB
	assets storage.Storage
}

// NewServiceHandler constructs ServiceHandler.
func NewServiceHandler(db *gorm.DB, assets storage.Storage) *ServiceHandler {
	return &ServiceHandler{db: db, assets: assets}
}

type listingFields struct {
	Title        string
	Description  string
	ShortDesc    string
	Category     string
	Subcategory  string
	Price        int64
	DeliveryTime int
	Revisions    int
	Features     []string
}

// parseListingFields reads listing metadata from query parameters; the request
// body carries the multipart image set.
func parseListingFields(c *fiber.Ctx) (*listingFields, error) {
	fields := &listingFields{
		Title:       strings.TrimSpace(c.Query("title")),
		Description: strings.TrimSpace(c.Query("description")),
		ShortDesc:   strings.TrimSpace(c.Query("shortDesc")),
		Category:    strings.TrimSpace(c.Query("category")),
		Subcategory: strings.TrimSpace(c.Query("subcategory")),
	}

	if fields.Title == "" || fields.Description == "" || fields.Category == "" ||
		c.Query("price") == "" || c.Query("time") == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "all properties should be required")
	}

	price, err := strconv.ParseInt(c.Query("price"), 10, 64)
	if err != nil || price < 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid price")
	}
	fields.Price = price

	deliveryTime, err := strconv.Atoi(c.Query("time"))
	if err != nil || deliveryTime < 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid delivery time")
	}
	fields.DeliveryTime = deliveryTime

	if revisions := c.Query("revisions"); revisions != "" {
		parsed, err := strconv.Atoi(revisions)
		if err != nil || parsed < 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid revisions")
		}
		fields.Revisions = parsed
	}

	if raw := c.Query("features"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &fields.Features); err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid features")
		}
	}

	return fields, nil
}

func (h *ServiceHandler) uploadImages(c *fiber.Ctx) ([]models.ServiceImage, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "at least one image is required")
	}

	files := form.File["images"]
	if len(files) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "at least one image is required")
	}

	images := make([]models.ServiceImage, 0, len(files))
	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return nil, err
		}

		asset, err := h.assets.Store(c.Context(), file.Filename, data)
		if err != nil {
			return nil, err
		}
		images = append(images, models.ServiceImage{URL: asset.URL, StorageID: asset.StorageID})
	}

	return images, nil
}

// AddService creates a listing owned by the caller from query-param metadata
// and the uploaded image set.
func (h *ServiceHandler) AddService(c *fiber.Ctx) error {
	user, err := currentUser(c, h.db)
	if err != nil {
		return err
	}

	fields, err := parseListingFields(c)
	if err != nil {
		return err
	}

	images, err := h.uploadImages(c)
	if err != nil {
		return err
	}

	service := models.Service{
		UserID:       user.ID,
		Title:        fields.Title,
		Description:  fields.Description,
		ShortDesc:    fields.ShortDesc,
		Category:     fields.Category,
		Subcategory:  fields.Subcategory,
		Price:        fields.Price,
		DeliveryTime: fields.DeliveryTime,
		Revisions:    fields.Revisions,
		Features:     fields.Features,
		Images:       images,
	}

	if err := h.db.Create(&service).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": service})
}

// EditService replaces listing fields and images; only the owner may edit.
// Previous images are removed from storage after the update commits.
func (h *ServiceHandler) EditService(c *fiber.Ctx) error {
	user, err := currentUser(c, h.db)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("serviceId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid service id")
	}

	var existing models.Service
	if err := h.db.Preload("Images").First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "service not found")
		}
		return err
	}

	if existing.UserID != user.ID {
		return fiber.NewError(fiber.StatusForbidden, "only the owner can edit a service")
	}

	fields, err := parseListingFields(c)
	if err != nil {
		return err
	}

	images, err := h.uploadImages(c)
	if err != nil {
		return err
	}

	oldImages := existing.Images
	existing.Title = fields.Title
	existing.Description = fields.Description
	existing.ShortDesc = fields.ShortDesc
	existing.Category = fields.Category
	existing.Subcategory = fields.Subcategory
	existing.Price = fields.Price
	existing.DeliveryTime = fields.DeliveryTime
	existing.Revisions = fields.Revisions
	existing.Features = fields.Features
	existing.Images = nil

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		if err := tx.Where("service_id = ?", existing.ID).Delete(&models.ServiceImage{}).Error; err != nil {
			return err
		}
		for i := range images {
			images[i].ServiceID = existing.ID
		}
		return tx.Create(&images).Error
	})
	if err != nil {
		return err
	}

	// Old assets are cleaned up best-effort; a failed delete leaves an
	// orphaned file, not an inconsistent listing.
	for _, img := range oldImages {
		if err := h.assets.Delete(c.Context(), img.StorageID); err != nil {
			log.Printf("[Service] failed to delete stored image %s: %v", img.StorageID, err)
		}
	}

	existing.Images = images
	return c.JSON(fiber.Map{"success": true, "data": existing})
}

// GetUserServices returns the caller's own listings.
func (h *ServiceHandler) GetUserServices(c *fiber.Ctx) error {
	user, err := currentUser(c, h.db)
	if err != nil {
		return err
	}

	var items []models.Service
	if err := h.db.Preload("Images").
		Where("user_id = ?", user.ID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": items})
}

// GetServiceData returns a listing with its reviews and the seller's
// cross-listing aggregate rating.
func (h *ServiceHandler) GetServiceData(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("serviceId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid service id")
	}

	var service models.Service
	if err := h.db.Preload("Images").
		Preload("Reviews.Reviewer").
		Preload("CreatedBy").
		First(&service, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "service not found")
		}
		return err
	}

	total, average, err := services.SellerRating(h.db, service.UserID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"service":        service,
			"total_reviews":  total,
			"average_rating": average,
		},
	})
}

var searchColumns = []string{"title", "description", "category", "subcategory", "short_desc", "features"}

// SearchServices matches the term case-insensitively against listing text
// columns and the category filter against category/subcategory. All non-empty
// predicates are OR-ed; wholly empty input returns everything.
func (h *ServiceHandler) SearchServices(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	term := strings.TrimSpace(c.Query("query"))
	category := strings.TrimSpace(c.Query("category"))

	query := h.db.Model(&models.Service{})

	var conds []string
	var args []interface{}
	if term != "" {
		like := "%" + strings.ToLower(term) + "%"
		for _, col := range searchColumns {
			conds = append(conds, "LOWER("+col+") LIKE ?")
			args = append(args, like)
		}
	}
	if category != "" {
		like := "%" + strings.ToLower(category) + "%"
		for _, col := range []string{"category", "subcategory"} {
			conds = append(conds, "LOWER("+col+") LIKE ?")
			args = append(args, like)
		}
	}
	if len(conds) > 0 {
		query = query.Where(strings.Join(conds, " OR "), args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var items []models.Service
	if err := query.Preload("Images").
		Preload("CreatedBy").
		Preload("Reviews.Reviewer").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    items,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// CheckServiceOrder reports whether the caller has a confirmed order for the
// service.
func (h *ServiceHandler) CheckServiceOrder(c *fiber.Ctx) error {
	user, err := currentUser(c, h.db)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("serviceId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid service id")
	}

	ordered, err := services.HasCompletedOrder(h.db, user.ID, id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"hasUserOrderedService": ordered})
}

var errReviewNotAllowed = errors.New("review requires a completed order")

type addReviewRequest struct {
	Rating     int    `json:"rating"`
	ReviewText string `json:"reviewText"`
}

// AddReview appends a review to a service. Only buyers with a confirmed order
// for that exact service may review; the gate is re-checked inside the insert
// transaction.
func (h *ServiceHandler) AddReview(c *fiber.Ctx) error {
	user, err := currentUser(c, h.db)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("serviceId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid service id")
	}

	var req addReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.ReviewText) == "" || req.Rating == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "reviewText and rating are required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return fiber.NewError(fiber.StatusBadRequest, "rating must be between 1 and 5")
	}

	var service models.Service
	if err := h.db.First(&service, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "service not found")
		}
		return err
	}

	var review models.Review
	err = h.db.Transaction(func(tx *gorm.DB) error {
		completed, err := services.HasCompletedOrder(tx, user.ID, service.ID)
		if err != nil {
			return err
		}
		if !completed {
			return errReviewNotAllowed
		}

		review = models.Review{
			ReviewerID: user.ID,
			ServiceID:  service.ID,
			Rating:     req.Rating,
			ReviewText: req.ReviewText,
		}
		return tx.Create(&review).Error
	})
	if errors.Is(err, errReviewNotAllowed) {
		return fiber.NewError(fiber.StatusForbidden, "you need to purchase the service to add a review")
	}
	if err != nil {
		return err
	}

	review.Reviewer = user
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": review})
}
