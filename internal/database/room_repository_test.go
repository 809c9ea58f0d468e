package database

import (
	"database/sql"
	"testing"

	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoom_DefaultsAmenities(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoomRepository(db)

	room := &models.Room{RoomNumber: "A101", Type: models.RoomTypeSingle, Price: 80, Capacity: 1}
	mock.ExpectExec(`INSERT INTO rooms`).
		WithArgs(sqlmock.AnyArg(), "A101", "Single", 80.0, 1, "{}", 0.0, "", false, "", "", "", nil,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(room))
	assert.NotNil(t, room.Amenities)

	err := mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestListRooms_NoFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoomRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM rooms ORDER BY room_number$`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rooms, err := repo.List(models.RoomFilter{})
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestGetRoom_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoomRepository(db)

	mock.ExpectQuery(`FROM rooms WHERE id = \$1`).WillReturnError(sql.ErrNoRows)

	room, err := repo.GetByID(uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, room)
}

func TestDeleteRoom(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoomRepository(db)

	t.Run("Clears Cancelled Bookings First", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectExec(`DELETE FROM bookings WHERE room_id = \$1 AND status = 'Cancelled'`).
			WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM rooms WHERE id = \$1`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Delete(db, id))
	})

	t.Run("Referenced By Bookings", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM bookings`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM rooms`).WillReturnError(&pq.Error{Code: "23503"})
		assert.ErrorIs(t, repo.Delete(db, uuid.New()), ErrForeignKeyViolation)
	})

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM bookings`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM rooms`).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Delete(db, uuid.New()), sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasActiveBookings(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoomRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM bookings WHERE room_id = \$1 AND status <> 'Cancelled'\)`).
		WithArgs(id).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	active, err := repo.HasActiveBookings(db, id)
	require.NoError(t, err)
	assert.True(t, active)
}
