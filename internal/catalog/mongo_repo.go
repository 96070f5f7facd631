package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mknind/backoffice/pkg/db/models"
	dbtypes "github.com/mknind/backoffice/pkg/db/types"
)

const (
	customersCollection = "customers"
	productsCollection  = "products"
)

// Collections is the slice of a mongo client the catalog needs.
type Collections interface {
	Collection(name string) *mongo.Collection
}

type mongoRepository struct {
	customers *mongo.Collection
	products  *mongo.Collection
	now       func() time.Time
}

// NewMongoRepository stores the catalog as documents. Ids are kept as
// canonical uuid strings so they round-trip with the relational store.
func NewMongoRepository(cols Collections) Repository {
	return &mongoRepository{
		customers: cols.Collection(customersCollection),
		products:  cols.Collection(productsCollection),
		now:       time.Now,
	}
}

// EnsureIndexes creates the unique email/phone indexes.
func EnsureIndexes(ctx context.Context, cols Collections) error {
	_, err := cols.Collection(customersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("ux_customers_email")},
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true).SetName("ux_customers_phone")},
	})
	if err != nil {
		return fmt.Errorf("ensure customer indexes: %w", err)
	}
	return nil
}

type addressDoc struct {
	ID      string `bson:"_id"`
	Address string `bson:"address"`
	Pincode string `bson:"pincode"`
	City    string `bson:"city"`
	State   string `bson:"state"`
	Country string `bson:"country"`
}

type customerDoc struct {
	ID        string       `bson:"_id"`
	FirstName string       `bson:"firstName"`
	LastName  string       `bson:"lastName"`
	Email     string       `bson:"email"`
	Phone     string       `bson:"phone"`
	Addresses []addressDoc `bson:"addresses"`
	CreatedAt time.Time    `bson:"createdAt"`
	UpdatedAt time.Time    `bson:"updatedAt"`
}

type variantDoc struct {
	ID     string `bson:"_id"`
	Weight string `bson:"weight"`
	Price  string `bson:"price"`
}

type productDoc struct {
	ID           string       `bson:"_id"`
	ProductName  string       `bson:"productName"`
	Description  string       `bson:"description"`
	Status       bool         `bson:"status"`
	TopSeller    bool         `bson:"topSeller"`
	HideFromShop bool         `bson:"hideFromShop"`
	Variants     []variantDoc `bson:"variants"`
	Images       []string     `bson:"images"`
	Categories   []string     `bson:"categories"`
	CreatedAt    time.Time    `bson:"createdAt"`
	UpdatedAt    time.Time    `bson:"updatedAt"`
}

func toCustomerDoc(c *models.Customer) customerDoc {
	doc := customerDoc{
		ID:        c.ID.String(),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Addresses: make([]addressDoc, 0, len(c.Addresses)),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for _, a := range c.Addresses {
		doc.Addresses = append(doc.Addresses, addressDoc{
			ID: a.ID.String(), Address: a.Address, Pincode: a.Pincode,
			City: a.City, State: a.State, Country: a.Country,
		})
	}
	return doc
}

func (d customerDoc) model() (models.Customer, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.Customer{}, fmt.Errorf("customer %q: %w", d.ID, err)
	}
	out := models.Customer{
		ID:        id,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Phone:     d.Phone,
		Addresses: make([]models.Address, 0, len(d.Addresses)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, a := range d.Addresses {
		aid, err := uuid.Parse(a.ID)
		if err != nil {
			return models.Customer{}, fmt.Errorf("customer %q address %q: %w", d.ID, a.ID, err)
		}
		out.Addresses = append(out.Addresses, models.Address{
			ID: aid, Address: a.Address, Pincode: a.Pincode,
			City: a.City, State: a.State, Country: a.Country,
		})
	}
	return out, nil
}

func toProductDoc(p *models.Product) productDoc {
	doc := productDoc{
		ID:           p.ID.String(),
		ProductName:  p.ProductName,
		Description:  p.Description,
		Status:       p.Status,
		TopSeller:    p.TopSeller,
		HideFromShop: p.HideFromShop,
		Variants:     make([]variantDoc, 0, len(p.Variants)),
		Images:       append([]string{}, p.Images...),
		Categories:   make([]string, 0, len(p.CategoryIDs)),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	for _, v := range p.Variants {
		doc.Variants = append(doc.Variants, variantDoc{ID: v.ID.String(), Weight: v.Weight, Price: v.Price.String()})
	}
	for _, c := range p.CategoryIDs {
		doc.Categories = append(doc.Categories, c.String())
	}
	return doc
}

func (d productDoc) model() (models.Product, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.Product{}, fmt.Errorf("product %q: %w", d.ID, err)
	}
	out := models.Product{
		ID:           id,
		ProductName:  d.ProductName,
		Description:  d.Description,
		Status:       d.Status,
		TopSeller:    d.TopSeller,
		HideFromShop: d.HideFromShop,
		Variants:     make([]models.Variant, 0, len(d.Variants)),
		Images:       append([]string{}, d.Images...),
		CategoryIDs:  make(dbtypes.UUIDArray, 0, len(d.Categories)),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	for _, v := range d.Variants {
		vid, err := uuid.Parse(v.ID)
		if err != nil {
			return models.Product{}, fmt.Errorf("product %q variant %q: %w", d.ID, v.ID, err)
		}
		price, err := decimal.NewFromString(v.Price)
		if err != nil {
			return models.Product{}, fmt.Errorf("product %q variant %q price: %w", d.ID, v.ID, err)
		}
		out.Variants = append(out.Variants, models.Variant{ID: vid, Weight: v.Weight, Price: price})
	}
	for _, c := range d.Categories {
		cid, err := uuid.Parse(c)
		if err != nil {
			return models.Product{}, fmt.Errorf("product %q category %q: %w", d.ID, c, err)
		}
		out.CategoryIDs = append(out.CategoryIDs, cid)
	}
	return out, nil
}

func (r *mongoRepository) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if err := customer.BeforeCreate(nil); err != nil {
		return err
	}
	now := r.now().UTC()
	customer.CreatedAt, customer.UpdatedAt = now, now
	_, err := r.customers.InsertOne(ctx, toCustomerDoc(customer))
	return translateMongo(err)
}

func (r *mongoRepository) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	customer.UpdatedAt = r.now().UTC()
	doc := toCustomerDoc(customer)
	res, err := r.customers.UpdateByID(ctx, doc.ID, bson.M{"$set": bson.M{
		"firstName": doc.FirstName,
		"lastName":  doc.LastName,
		"email":     doc.Email,
		"phone":     doc.Phone,
		"addresses": doc.Addresses,
		"updatedAt": doc.UpdatedAt,
	}})
	if err != nil {
		return translateMongo(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	res, err := r.customers.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var doc customerDoc
	if err := r.customers.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translateMongo(err)
	}
	out, err := doc.model()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *mongoRepository) FindCustomersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Customer, error) {
	keys := idStrings(ids)
	out := make(map[uuid.UUID]models.Customer, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	cur, err := r.customers.Find(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return nil, err
	}
	var docs []customerDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		c, err := doc.model()
		if err != nil {
			return nil, err
		}
		out[c.ID] = c
	}
	return out, nil
}

func (r *mongoRepository) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	cur, err := r.customers.Find(ctx, bson.M{}, newestFirst())
	if err != nil {
		return nil, err
	}
	var docs []customerDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Customer, 0, len(docs))
	for _, doc := range docs {
		c, err := doc.model()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *mongoRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := product.BeforeCreate(nil); err != nil {
		return err
	}
	now := r.now().UTC()
	product.CreatedAt, product.UpdatedAt = now, now
	_, err := r.products.InsertOne(ctx, toProductDoc(product))
	return translateMongo(err)
}

func (r *mongoRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = r.now().UTC()
	doc := toProductDoc(product)
	res, err := r.products.UpdateByID(ctx, doc.ID, bson.M{"$set": bson.M{
		"productName":  doc.ProductName,
		"description":  doc.Description,
		"status":       doc.Status,
		"topSeller":    doc.TopSeller,
		"hideFromShop": doc.HideFromShop,
		"variants":     doc.Variants,
		"images":       doc.Images,
		"categories":   doc.Categories,
		"updatedAt":    doc.UpdatedAt,
	}})
	if err != nil {
		return translateMongo(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := r.products.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var doc productDoc
	if err := r.products.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translateMongo(err)
	}
	out, err := doc.model()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *mongoRepository) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	keys := idStrings(ids)
	out := make(map[uuid.UUID]models.Product, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	cur, err := r.products.Find(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		p, err := doc.model()
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, nil
}

func (r *mongoRepository) ListProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error) {
	filter := bson.M{}
	if filters.ActiveOnly {
		filter["status"] = true
		filter["hideFromShop"] = false
	}
	if filters.TopSellerOnly {
		filter["topSeller"] = true
	}
	cur, err := r.products.Find(ctx, filter, newestFirst())
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(docs))
	for _, doc := range docs {
		p, err := doc.model()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

func idStrings(ids []uuid.UUID) []string {
	ids = uniqueIDs(ids)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func translateMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
