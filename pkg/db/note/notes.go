package note

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNoteNotFound = errors.New("note not found")

type Note struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"userID" json:"-"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
	UpdatedAt int64              `bson:"updatedAt" json:"updatedAt"`
}

func (dbService *NoteDBService) AddNote(userID string, title string, content string) (Note, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	now := time.Now().Unix()
	note := Note{
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := dbService.collectionNotes().InsertOne(ctx, note)
	if err != nil {
		return Note{}, err
	}
	note.ID = res.InsertedID.(primitive.ObjectID)
	return note, nil
}

func (dbService *NoteDBService) GetNotesForUser(userID string) ([]Note, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := dbService.collectionNotes().Find(ctx, bson.M{"userID": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notes := []Note{}
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// DeleteNote removes a note only if it belongs to the given user.
func (dbService *NoteDBService) DeleteNote(userID string, noteID string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(noteID)
	if err != nil {
		return ErrNoteNotFound
	}

	res, err := dbService.collectionNotes().DeleteOne(ctx, bson.M{"_id": _id, "userID": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount < 1 {
		return ErrNoteNotFound
	}
	return nil
}
