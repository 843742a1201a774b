package repository

import (
	"context"
	"errors"
	"time"

	"fashion-order-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrCouponNotFound = errors.New("cupón no encontrado")
	ErrDuplicateCode  = errors.New("ya existe un cupón con ese código")
	// ErrNotRedeemable: el cupón existe pero no pasó el chequeo atómico de canje.
	ErrNotRedeemable = errors.New("el cupón no se puede canjear")
)

type MongoCouponRepository struct {
	col *mongo.Collection
}

func NewMongoCouponRepository(db *mongo.Database) *MongoCouponRepository {
	return &MongoCouponRepository{col: db.Collection("coupons")}
}

func (m *MongoCouponRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (m *MongoCouponRepository) Create(ctx context.Context, c *model.Coupon) error {
	now := time.Now().UTC()
	c.Code = model.NormalizeCouponCode(c.Code)
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := m.col.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateCode
	}
	return err
}

func (m *MongoCouponRepository) FindByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var c model.Coupon
	err := m.col.FindOne(ctx, bson.M{"code": model.NormalizeCouponCode(code)}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update reemplaza los campos editables. used_count y created_at no se tocan.
func (m *MongoCouponRepository) Update(ctx context.Context, c *model.Coupon) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := m.col.UpdateOne(ctx,
		bson.M{"code": model.NormalizeCouponCode(c.Code)},
		bson.M{"$set": bson.M{
			"description":     c.Description,
			"type":            c.Type,
			"value":           c.Value,
			"min_order_total": c.MinOrderTotal,
			"max_discount":    c.MaxDiscount,
			"max_uses":        c.MaxUses,
			"expires_at":      c.ExpiresAt,
			"is_active":       c.IsActive,
			"updated_at":      c.UpdatedAt,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCouponNotFound
	}
	return nil
}

func (m *MongoCouponRepository) SetActive(ctx context.Context, code string, active bool) error {
	res, err := m.col.UpdateOne(ctx,
		bson.M{"code": model.NormalizeCouponCode(code)},
		bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCouponNotFound
	}
	return nil
}

func (m *MongoCouponRepository) List(ctx context.Context) ([]*model.Coupon, error) {
	cur, err := m.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []*model.Coupon{}
	for cur.Next(ctx) {
		var c model.Coupon
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

// Redeem incrementa used_count en una sola operación, repitiendo en el filtro los
// chequeos de CanUse. Dos checkouts concurrentes no pueden pasar ambos el límite.
func (m *MongoCouponRepository) Redeem(ctx context.Context, code string, now time.Time) (*model.Coupon, error) {
	filter := bson.M{
		"code":      model.NormalizeCouponCode(code),
		"is_active": true,
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"expires_at": nil},
				bson.M{"expires_at": bson.M{"$gte": now}},
			}},
			bson.M{"$or": bson.A{
				bson.M{"max_uses": nil},
				bson.M{"$expr": bson.M{"$lt": bson.A{"$used_count", "$max_uses"}}},
			}},
		},
	}
	update := bson.M{
		"$inc": bson.M{"used_count": 1},
		"$set": bson.M{"updated_at": now.UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c model.Coupon
	err := m.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, ferr := m.FindByCode(ctx, code); ferr != nil {
			return nil, ferr
		}
		return nil, ErrNotRedeemable
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Release deshace un canje (la orden no se pudo guardar).
func (m *MongoCouponRepository) Release(ctx context.Context, code string) error {
	res, err := m.col.UpdateOne(ctx,
		bson.M{"code": model.NormalizeCouponCode(code), "used_count": bson.M{"$gt": 0}},
		bson.M{
			"$inc": bson.M{"used_count": -1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCouponNotFound
	}
	return nil
}
