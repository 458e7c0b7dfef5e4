package design

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/apparel/storefront/internal/domain/catalog"
	"github.com/apparel/storefront/internal/domain/design"
	"github.com/apparel/storefront/internal/domain/pricing"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultUploadExpiry is how long a presigned artwork upload stays valid
const DefaultUploadExpiry = 15 * time.Minute

var uploadExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// ErrConfigurationFrozen is returned when a paid order already references the configuration
var ErrConfigurationFrozen = shared.NewDomainError("INVALID_STATE", "This design has already been ordered and can no longer change")

// PaidOrderChecker tells whether a configuration is referenced by a paid order
type PaidOrderChecker interface {
	ExistsPaidForConfiguration(ctx context.Context, configurationID uuid.UUID) (bool, error)
}

// Service drives the configure flow: start, choose options, preview
type Service struct {
	configs        design.ConfigurationRepository
	products       catalog.ProductRepository
	resolver       *design.Resolver
	calculator     *pricing.Calculator
	orders         PaidOrderChecker
	storage        ObjectStorageService
	uploadExpiry   time.Duration
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewService creates a new design Service
func NewService(
	configs design.ConfigurationRepository,
	products catalog.ProductRepository,
	resolver *design.Resolver,
	calculator *pricing.Calculator,
	orders PaidOrderChecker,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		configs:      configs,
		products:     products,
		resolver:     resolver,
		calculator:   calculator,
		orders:       orders,
		uploadExpiry: DefaultUploadExpiry,
		logger:       logger,
		now:          time.Now,
	}
}

// SetStorage enables presigned artwork uploads
func (s *Service) SetStorage(storage ObjectStorageService, expiry time.Duration) {
	s.storage = storage
	if expiry > 0 {
		s.uploadExpiry = expiry
	}
}

// SetEventPublisher sets the event publisher
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateCustom starts a design from an uploaded image and sends the
// customer on to the design step
func (s *Service) CreateCustom(ctx context.Context, req CreateCustomRequest) (*MutationResponse, error) {
	cfg, err := design.NewCustom(req.ImageURL, req.Width, req.Height)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, cfg); err != nil {
		return nil, err
	}
	return &MutationResponse{ID: cfg.ID, RedirectURL: designPath(cfg.ID)}, nil
}

// CreateFromProduct starts a configuration from a catalog product and
// sends the customer straight to checkout
func (s *Service) CreateFromProduct(ctx context.Context, req CreateFromProductRequest) (*MutationResponse, error) {
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	opts := design.Options{ColorID: req.ColorID, SizeID: req.SizeID, FabricID: req.FabricID}
	if err := checkOffered(product, opts); err != nil {
		return nil, err
	}
	imageURL := req.ImageURL
	if imageURL == "" {
		imageURL = product.PrimaryImage()
	}
	cfg, err := design.NewCatalogSelection(product.ID, opts, imageURL)
	if err != nil {
		return nil, err
	}
	if err := s.requireResolvable(ctx, cfg); err != nil {
		return nil, err
	}
	if err := s.save(ctx, cfg); err != nil {
		return nil, err
	}
	return &MutationResponse{ID: cfg.ID, RedirectURL: checkoutPath(cfg.ID)}, nil
}

// UpdateOptions saves the color, size and fabric chosen on the design step
func (s *Service) UpdateOptions(ctx context.Context, id uuid.UUID, req UpdateOptionsRequest) (*MutationResponse, error) {
	cfg, err := s.loadMutable(ctx, id)
	if err != nil {
		return nil, err
	}
	cfg.UpdateOptions(req.options())
	resolved, err := s.resolve(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := requireResolved(resolved); err != nil {
		return nil, err
	}
	if product, ok := resolved.Product.Get(); ok {
		if err := checkOffered(product, cfg.Options); err != nil {
			return nil, err
		}
	}
	if err := s.save(ctx, cfg); err != nil {
		return nil, err
	}
	redirect := previewPath(cfg.ID)
	if !cfg.IsCustom() {
		redirect = checkoutPath(cfg.ID)
	}
	return &MutationResponse{ID: cfg.ID, RedirectURL: redirect}, nil
}

// AttachArtwork records the composited preview of a custom design
func (s *Service) AttachArtwork(ctx context.Context, id uuid.UUID, req AttachArtworkRequest) (*MutationResponse, error) {
	cfg, err := s.loadMutable(ctx, id)
	if err != nil {
		return nil, err
	}
	placement := design.Placement{
		Width:  req.Placement.Width,
		Height: req.Placement.Height,
		X:      req.Placement.X,
		Y:      req.Placement.Y,
	}
	if err := cfg.AttachArtwork(req.CroppedImageURL, placement); err != nil {
		return nil, err
	}
	if err := s.save(ctx, cfg); err != nil {
		return nil, err
	}
	return &MutationResponse{ID: cfg.ID, RedirectURL: previewPath(cfg.ID)}, nil
}

// Get returns the configuration with its catalog labels and current price.
// The quote is left out when the configuration cannot be priced, e.g. its
// product was deleted.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ConfigurationResponse, error) {
	cfg, err := s.configs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resolved, err := s.resolve(ctx, cfg)
	if err != nil {
		return nil, err
	}
	resp := ToConfigurationResponse(resolved)
	if quote, err := s.calculator.Compute(resolved); err == nil {
		q := ToQuoteResponse(quote)
		resp.Quote = &q
	} else {
		s.logger.Debug("configuration not priceable", zap.String("configuration_id", id.String()), zap.Error(err))
	}
	return &resp, nil
}

// RequestArtworkUpload presigns an upload for an original or cropped image
func (s *Service) RequestArtworkUpload(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("UPLOADS_DISABLED", "Artwork uploads are not configured")
	}
	ext, ok := uploadExtensions[req.ContentType]
	if !ok {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Only PNG, JPEG or WebP images can be uploaded")
	}
	now := s.now().UTC()
	key := path.Join("artwork", now.Format("2006"), now.Format("01"), uuid.NewString()+ext)

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType, s.uploadExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign artwork upload: %w", err)
	}
	return &UploadResponse{
		UploadURL:  uploadURL,
		PublicURL:  s.storage.PublicURL(key),
		StorageKey: key,
		ExpiresAt:  expiresAt,
	}, nil
}

// loadMutable loads a configuration that no paid order has frozen
func (s *Service) loadMutable(ctx context.Context, id uuid.UUID) (*design.Configuration, error) {
	cfg, err := s.configs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.orders != nil {
		paid, err := s.orders.ExistsPaidForConfiguration(ctx, id)
		if err != nil {
			return nil, err
		}
		if paid {
			return nil, ErrConfigurationFrozen
		}
	}
	return cfg, nil
}

func (s *Service) resolve(ctx context.Context, cfg *design.Configuration) (*design.ResolvedConfiguration, error) {
	resolved, err := s.resolver.Resolve(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configuration: %w", err)
	}
	return resolved, nil
}

func (s *Service) requireResolvable(ctx context.Context, cfg *design.Configuration) error {
	resolved, err := s.resolve(ctx, cfg)
	if err != nil {
		return err
	}
	return requireResolved(resolved)
}

func (s *Service) save(ctx context.Context, cfg *design.Configuration) error {
	if err := s.configs.Save(ctx, cfg); err != nil {
		return err
	}
	if err := shared.PublishPending(ctx, s.eventPublisher, cfg); err != nil {
		s.logger.Warn("failed to publish configuration events", zap.String("configuration_id", cfg.ID.String()), zap.Error(err))
	}
	return nil
}

// requireResolved rejects newly chosen options that do not exist
func requireResolved(r *design.ResolvedConfiguration) error {
	switch {
	case r.Color.State() == design.RefUnresolved:
		return shared.NewDomainError("VALIDATION_ERROR", "Selected color does not exist")
	case r.Size.State() == design.RefUnresolved:
		return shared.NewDomainError("VALIDATION_ERROR", "Selected size does not exist")
	case r.Fabric.State() == design.RefUnresolved:
		return shared.NewDomainError("VALIDATION_ERROR", "Selected fabric does not exist")
	case r.Product.State() == design.RefUnresolved:
		return shared.NewDomainError("VALIDATION_ERROR", "Selected product is no longer available")
	}
	return nil
}

func checkOffered(product *catalog.Product, opts design.Options) error {
	if opts.SizeID != nil && !product.OffersSize(*opts.SizeID) {
		return shared.NewDomainError("VALIDATION_ERROR", "This size is not available for the product")
	}
	if opts.FabricID != nil && !product.OffersFabric(*opts.FabricID) {
		return shared.NewDomainError("VALIDATION_ERROR", "This fabric is not available for the product")
	}
	return nil
}

func designPath(id uuid.UUID) string {
	return "/configure/design?" + url.Values{"id": {id.String()}}.Encode()
}

func previewPath(id uuid.UUID) string {
	return "/configure/preview?" + url.Values{"id": {id.String()}}.Encode()
}

func checkoutPath(id uuid.UUID) string {
	return "/protected/checkout/" + id.String()
}
