package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/storefront/internal/domain/models"
)

// ReceiptDocument is the stored shape of a receipt.
type ReceiptDocument struct {
	ID            string               `bson:"_id"`
	CartID        string               `bson:"cart_id"`
	Customer      string               `bson:"customer"`
	Lines         []ReceiptLineDoc     `bson:"lines"`
	Subtotal      primitive.Decimal128 `bson:"subtotal"`
	ShippingFee   primitive.Decimal128 `bson:"shipping_fee"`
	Total         primitive.Decimal128 `bson:"total"`
	Balance       primitive.Decimal128 `bson:"balance"`
	Shipment      []ShipmentLineDoc    `bson:"shipment,omitempty"`
	TotalWeightKg float64              `bson:"total_weight_kg"`
	CreatedAt     time.Time            `bson:"created_at"`
}

// ReceiptLineDoc is one charged item.
type ReceiptLineDoc struct {
	Quantity  int                  `bson:"quantity"`
	Name      string               `bson:"name"`
	LineTotal primitive.Decimal128 `bson:"line_total"`
}

// ShipmentLineDoc is one grouped shipment entry.
type ShipmentLineDoc struct {
	Name  string `bson:"name"`
	Count int    `bson:"count"`
}

// ReceiptRepository archives receipts in MongoDB.
type ReceiptRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewReceiptRepository connects to MongoDB and verifies the connection.
func NewReceiptRepository(ctx context.Context, uri string, dbName string) (*ReceiptRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &ReceiptRepository{
		client:   client,
		dbName:   dbName,
		collName: "receipts",
	}, nil
}

// SaveReceipt inserts the receipt document.
func (r *ReceiptRepository) SaveReceipt(ctx context.Context, receipt models.Receipt) error {
	doc, err := ToDocument(receipt)
	if err != nil {
		return err
	}

	collection := r.client.Database(r.dbName).Collection(r.collName)
	if _, err := collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert receipt %s: %w", receipt.ID, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *ReceiptRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// ToDocument converts a receipt, keeping money exact as Decimal128.
func ToDocument(receipt models.Receipt) (ReceiptDocument, error) {
	doc := ReceiptDocument{
		ID:        receipt.ID,
		CartID:    receipt.CartID,
		Customer:  receipt.Customer,
		CreatedAt: receipt.CreatedAt,
	}

	amounts := []struct {
		dst *primitive.Decimal128
		src decimal.Decimal
	}{
		{&doc.Subtotal, receipt.Subtotal},
		{&doc.ShippingFee, receipt.ShippingFee},
		{&doc.Total, receipt.Total},
		{&doc.Balance, receipt.Balance},
	}
	for _, a := range amounts {
		v, err := toDecimal128(a.src)
		if err != nil {
			return ReceiptDocument{}, err
		}
		*a.dst = v
	}

	for _, line := range receipt.Lines {
		total, err := toDecimal128(line.LineTotal)
		if err != nil {
			return ReceiptDocument{}, err
		}
		doc.Lines = append(doc.Lines, ReceiptLineDoc{Quantity: line.Quantity, Name: line.Name, LineTotal: total})
	}

	if receipt.Shipment != nil {
		for _, line := range receipt.Shipment.Lines {
			doc.Shipment = append(doc.Shipment, ShipmentLineDoc{Name: line.Name, Count: line.Count})
		}
		doc.TotalWeightKg = receipt.Shipment.TotalWeightKg
	}

	return doc, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("convert %s to decimal128: %w", d, err)
	}
	return v, nil
}
