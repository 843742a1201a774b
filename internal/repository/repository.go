package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"fashion-order-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("orden no encontrada")
	// ErrStaleStatus: el estado cambió entre la lectura y la escritura.
	ErrStaleStatus = errors.New("el estado de la orden cambió mientras se actualizaba")
)

// orderDocument acepta los campos viejos status / status_key además de status_step.
type orderDocument struct {
	model.Order `bson:",inline"`

	LegacyStatus    any `bson:"status,omitempty"`
	LegacyStatusKey any `bson:"status_key,omitempty"`
}

// toModel resuelve el paso: status_step si se reconoce, si no status_key, si no status,
// y pending como último recurso. stepMatch arma la misma regla como filtro de Mongo.
func (d *orderDocument) toModel() *model.Order {
	o := d.Order
	for i := range o.History {
		o.History[i].Status = model.NormalizeStep(string(o.History[i].Status))
	}
	if step, ok := model.ParseStep(string(o.Step)); ok {
		o.Step = step
		return &o
	}
	switch {
	case d.LegacyStatusKey != nil:
		o.Step = model.NormalizeStep(d.LegacyStatusKey)
	case d.LegacyStatus != nil:
		o.Step = model.NormalizeStep(d.LegacyStatus)
	default:
		o.Step = model.StepPending
	}
	return &o
}

// storedStepValues lista las formas en que un paso puede estar guardado:
// la clave canónica, sus sinónimos y el código numérico (int32, int64, double o texto).
func storedStepValues(step model.Step) bson.A {
	values := bson.A{}
	for _, alias := range step.Aliases() {
		values = append(values, alias)
	}
	if len(values) == 0 {
		values = append(values, string(step))
	}
	if i := step.Index(); i >= 0 {
		values = append(values, int32(i), int64(i), float64(i), strconv.Itoa(i))
	}
	return values
}

func knownStepValues(except model.Step) bson.A {
	known := bson.A{}
	for _, s := range model.Steps() {
		if s != except {
			known = append(known, storedStepValues(s)...)
		}
	}
	return known
}

// stepMatch devuelve las condiciones ($or) de los documentos que toModel resuelve a step.
// UpdateStatus y FindByStatus lo usan para que un valor viejo guardado siga matcheando.
func stepMatch(step model.Step) bson.A {
	values := storedStepValues(step)
	unknownStep := bson.M{"$nin": knownStepValues("")}

	if step != model.StepPending {
		return bson.A{
			bson.M{"status_step": bson.M{"$in": values}},
			bson.M{"status_step": unknownStep, "status_key": bson.M{"$in": values}},
			bson.M{"status_step": unknownStep, "status_key": nil, "status": bson.M{"$in": values}},
		}
	}
	others := knownStepValues(model.StepPending)
	return bson.A{
		bson.M{"status_step": bson.M{"$in": values}},
		bson.M{"status_step": unknownStep, "status_key": bson.M{"$ne": nil, "$nin": others}},
		bson.M{"status_step": unknownStep, "status_key": nil, "status": bson.M{"$nin": others}},
	}
}

// Mongo implementation
type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection("orders")}
}

// EnsureIndexes crea el índice único por order_id y el de consulta por estado.
func (m *MongoOrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "status_step", Value: 1}}},
	})
	return err
}

func (m *MongoOrderRepository) Save(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()

	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
		// Primer estado en historial
		o.History = []model.StatusRecord{
			{
				Status:    o.Step,
				Timestamp: now,
				UserID:    o.UserID, // creador
				Reason:    "Orden creada",
				Current:   true,
			},
		}
	}
	o.UpdatedAt = now

	filter := bson.M{"order_id": o.OrderID}
	update := bson.M{"$set": o}
	opts := options.Update().SetUpsert(true)
	_, err := m.col.UpdateOne(ctx, filter, update, opts)
	return err
}

func (m *MongoOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var res orderDocument
	err := m.col.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return res.toModel(), nil
}

// UpdateStatus mueve la orden de from a to solo si sigue en from.
func (m *MongoOrderRepository) UpdateStatus(ctx context.Context, orderID string, from, to model.Step, record model.StatusRecord) error {
	now := record.Timestamp.UTC()

	// PASO 1: cambiar estado, marcar fecha del paso y desmarcar el historial actual
	filter := bson.M{
		"order_id": orderID,
		"$or":      stepMatch(from),
	}
	set := bson.M{
		"status_step":         to,
		"updated_at":          now,
		"history.$[].current": false,
	}
	if field := model.StepTimestampField(to); field != "" {
		set[field] = now
	}

	r1, err := m.col.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if r1.MatchedCount == 0 {
		if _, err := m.FindByOrderID(ctx, orderID); err != nil {
			return err
		}
		return ErrStaleStatus
	}

	// PASO 2: pushear nuevo registro
	record.Current = true
	_, err = m.col.UpdateOne(ctx, bson.M{"order_id": orderID}, bson.M{
		"$push": bson.M{"history": record},
	})
	return err
}

func (m *MongoOrderRepository) FindAll(ctx context.Context) ([]*model.Order, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoOrderRepository) FindByStatus(ctx context.Context, step model.Step) ([]*model.Order, error) {
	return m.find(ctx, bson.M{"$or": stepMatch(step)})
}

func (m *MongoOrderRepository) FindByUserID(ctx context.Context, userID string) ([]*model.Order, error) {
	return m.find(ctx, bson.M{"user_id": userID})
}

func (m *MongoOrderRepository) find(ctx context.Context, filter bson.M) ([]*model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []*model.Order{}
	for cur.Next(ctx) {
		var v orderDocument
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v.toModel())
	}
	return out, cur.Err()
}
