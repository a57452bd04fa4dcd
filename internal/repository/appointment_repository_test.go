package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/iliyamo/doctors-portal/internal/model"
)

const appointmentsNS = "doctors-portal.appointments"

func TestAppointmentRepo_ListByPatient(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("filters by email and day", func(mt *mtest.T) {
		repo := &AppointmentRepo{Coll: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, appointmentsNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "patientName", Value: "Jane"},
			{Key: "email", Value: "jane@example.com"},
			{Key: "date", Value: "Thu Oct 15 2026"},
		}))

		got, err := repo.ListByPatient(context.Background(), "jane@example.com", "Thu Oct 15 2026")
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, id, got[0]["_id"])
		assert.Equal(mt, "Jane", got[0]["patientName"])

		filter := mt.GetStartedEvent().Command.Lookup("filter").Document()
		assert.Equal(mt, "jane@example.com", filter.Lookup("email").StringValue())
		assert.Equal(mt, "Thu Oct 15 2026", filter.Lookup("date").StringValue())
	})

	mt.Run("no day means email only", func(mt *mtest.T) {
		repo := &AppointmentRepo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, appointmentsNS, mtest.FirstBatch))

		got, err := repo.ListByPatient(context.Background(), "jane@example.com", "")
		require.NoError(mt, err)
		assert.NotNil(mt, got)
		assert.Empty(mt, got)

		filter := mt.GetStartedEvent().Command.Lookup("filter").Document()
		_, err = filter.LookupErr("date")
		assert.Error(mt, err)
	})
}

func TestAppointmentRepo_GetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := &AppointmentRepo{Coll: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, appointmentsNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "serviceName", Value: "Teeth Orthodontics"},
			{Key: "price", Value: 19.99},
			{Key: "notes", Value: "allergic to latex"},
			{Key: "payment", Value: bson.D{{Key: "last4", Value: "4242"}}},
		}))

		got, err := repo.GetByID(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, "Teeth Orthodontics", got["serviceName"])
		assert.Equal(mt, 19.99, got["price"])
		assert.Equal(mt, "allergic to latex", got["notes"])
		assert.NotContains(mt, got, "phone")

		// nested documents keep a map shape so they render as JSON objects
		body, err := json.Marshal(got)
		require.NoError(mt, err)
		assert.Contains(mt, string(body), `"payment":{"last4":"4242"}`)
		assert.Contains(mt, string(body), `"_id":"`+id.Hex()+`"`)
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := &AppointmentRepo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, appointmentsNS, mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := &AppointmentRepo{Coll: mt.Coll}
		_, err := repo.GetByID(context.Background(), "not-an-id")
		assert.ErrorIs(mt, err, ErrInvalidID)
	})
}

func TestAppointmentRepo_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("inserts the document as sent", func(mt *mtest.T) {
		repo := &AppointmentRepo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		booking := model.Appointment{
			"_id":         "client-chosen",
			"patientName": "Rahim",
			"email":       "rahim@example.com",
			"gender":      "male",
			"notes":       "allergic to latex",
		}
		res, err := repo.Create(context.Background(), booking)
		require.NoError(mt, err)
		assert.True(mt, res.Acknowledged)
		_, err = primitive.ObjectIDFromHex(res.InsertedID)
		assert.NoError(mt, err)
		assert.Equal(mt, "client-chosen", booking["_id"])

		doc := mt.GetStartedEvent().Command.Lookup("documents").Array().Index(0).Value().Document()
		assert.Equal(mt, "male", doc.Lookup("gender").StringValue())
		assert.Equal(mt, "allergic to latex", doc.Lookup("notes").StringValue())
		assert.Equal(mt, res.InsertedID, doc.Lookup("_id").ObjectID().Hex())
		for _, absent := range []string{"phone", "serviceName", "time", "price", "date", "payment"} {
			_, err := doc.LookupErr(absent)
			assert.Error(mt, err, absent)
		}
	})

	mt.Run("store error is wrapped", func(mt *mtest.T) {
		repo := &AppointmentRepo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "boom"}))

		_, err := repo.Create(context.Background(), model.Appointment{"email": "jane@example.com"})
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "insert appointment")
	})
}

func TestAppointmentRepo_AttachPayment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("matched", func(mt *mtest.T) {
		repo := &AppointmentRepo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		res, err := repo.AttachPayment(context.Background(), primitive.NewObjectID().Hex(), model.Payment{
			"amount":      19.99,
			"last4":       "4242",
			"receiptNote": "paid at front desk",
		})
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), res.MatchedCount)
		assert.Equal(mt, int64(1), res.ModifiedCount)

		first := mt.GetStartedEvent().Command.Lookup("updates").Array().Index(0).Value().Document()
		_, err = first.LookupErr("upsert")
		assert.Error(mt, err)
		payment := first.Lookup("u").Document().Lookup("$set").Document().Lookup("payment").Document()
		assert.Equal(mt, "4242", payment.Lookup("last4").StringValue())
		assert.Equal(mt, "paid at front desk", payment.Lookup("receiptNote").StringValue())
	})

	mt.Run("unknown id is rejected", func(mt *mtest.T) {
		repo := &AppointmentRepo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		_, err := repo.AttachPayment(context.Background(), primitive.NewObjectID().Hex(), model.Payment{"amount": 1.0})
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}
