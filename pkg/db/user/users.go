package user

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	usermanagement "github.com/hd-notes/notes-backend/pkg/user-management"
	userTypes "github.com/hd-notes/notes-backend/pkg/user-management/types"
)

// AddUser inserts a new user. A duplicate email maps to the conflict error of
// the user management service, the unique index decides races.
func (dbService *UserDBService) AddUser(user userTypes.User) (string, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	res, err := dbService.collectionUsers().InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", usermanagement.ErrAccountExists
		}
		return "", err
	}
	id := res.InsertedID.(primitive.ObjectID)
	return id.Hex(), nil
}

func (dbService *UserDBService) GetUser(userID string) (userTypes.User, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return userTypes.User{}, usermanagement.ErrAccountNotFound
	}

	var user userTypes.User
	err = dbService.collectionUsers().FindOne(ctx, bson.M{"_id": _id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return userTypes.User{}, usermanagement.ErrAccountNotFound
	}
	return user, err
}

func (dbService *UserDBService) GetUserByEmail(email string) (userTypes.User, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	var user userTypes.User
	err := dbService.collectionUsers().FindOne(ctx, bson.M{"account.accountID": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return userTypes.User{}, usermanagement.ErrAccountNotFound
	}
	return user, err
}

// SetVerificationCode replaces the pending challenge wholesale. Concurrent
// issues are last-writer-wins by design.
func (dbService *UserDBService) SetVerificationCode(userID string, vc userTypes.VerificationCode) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return usermanagement.ErrAccountNotFound
	}

	res, err := dbService.collectionUsers().UpdateOne(ctx,
		bson.M{"_id": _id},
		bson.M{"$set": bson.M{
			"account.verificationCode": vc,
			"timestamps.updatedAt":     time.Now().Unix(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount < 1 {
		return usermanagement.ErrAccountNotFound
	}
	return nil
}

// ConsumeVerificationCode clears the challenge in a single conditional write.
// The filter on the stored code guarantees a verify racing a newer issue
// never consumes the code it read earlier.
func (dbService *UserDBService) ConsumeVerificationCode(userID string, code string) (bool, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, usermanagement.ErrAccountNotFound
	}

	res, err := dbService.collectionUsers().UpdateOne(ctx,
		bson.M{"_id": _id, "account.verificationCode.code": code},
		bson.M{
			"$unset": bson.M{"account.verificationCode": ""},
			"$set":   bson.M{"timestamps.updatedAt": time.Now().Unix()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (dbService *UserDBService) UpdateProfile(userID string, profile userTypes.Profile) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return usermanagement.ErrAccountNotFound
	}

	res, err := dbService.collectionUsers().UpdateOne(ctx,
		bson.M{"_id": _id},
		bson.M{"$set": bson.M{
			"profile":              profile,
			"timestamps.updatedAt": time.Now().Unix(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount < 1 {
		return usermanagement.ErrAccountNotFound
	}
	return nil
}

// LinkGoogleAccount is write-once: the update filter only matches accounts
// without an existing link, an already-linked account is left untouched.
func (dbService *UserDBService) LinkGoogleAccount(userID string, googleID string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return usermanagement.ErrAccountNotFound
	}

	_, err = dbService.collectionUsers().UpdateOne(ctx,
		bson.M{
			"_id": _id,
			"$or": bson.A{
				bson.M{"account.googleID": bson.M{"$exists": false}},
				bson.M{"account.googleID": ""},
			},
		},
		bson.M{"$set": bson.M{
			"account.googleID":     googleID,
			"timestamps.updatedAt": time.Now().Unix(),
		}},
	)
	return err
}

func (dbService *UserDBService) SetLastLogin(userID string, at time.Time) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return usermanagement.ErrAccountNotFound
	}

	_, err = dbService.collectionUsers().UpdateOne(ctx,
		bson.M{"_id": _id},
		bson.M{"$set": bson.M{"timestamps.lastLogin": at.Unix()}},
	)
	return err
}
