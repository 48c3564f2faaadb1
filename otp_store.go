package authflow

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpChallengeRecordVersionV1 = 1

var (
	errChallengeNotFound         = errors.New("otp challenge not found")
	errChallengeCodeMismatch     = errors.New("otp challenge code mismatch")
	errChallengeAttemptsExceeded = errors.New("otp challenge attempts exceeded")
	errChallengeRedisUnavailable = errors.New("otp challenge redis unavailable")
)

// otpChallengeRecord is the persisted form of one outstanding challenge.
// Only the hash of the code is stored; a new issue for the same phone
// overwrites the record wholesale, which is what makes a resend invalidate
// the prior code.
type otpChallengeRecord struct {
	CodeHash  [32]byte
	ExpiresAt int64
	Attempts  uint16
}

type otpChallengeStore struct {
	redis  *redis.Client
	prefix string
}

func newOtpChallengeStore(redisClient *redis.Client, prefix string) *otpChallengeStore {
	return &otpChallengeStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *otpChallengeStore) key(phone PhoneNumber) string {
	return s.prefix + ":chal:" + string(phone)
}

// Save describes the save operation and its observable behavior.
//
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *otpChallengeStore) Save(ctx context.Context, phone PhoneNumber, record *otpChallengeRecord, ttl time.Duration) error {
	encoded, err := encodeOtpChallengeRecord(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(phone), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errChallengeRedisUnavailable, err)
	}

	return nil
}

// Delete describes the delete operation and its observable behavior.
func (s *otpChallengeStore) Delete(ctx context.Context, phone PhoneNumber) error {
	if err := s.redis.Del(ctx, s.key(phone)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errChallengeRedisUnavailable, err)
	}
	return nil
}

// Consume atomically checks the provided hash against the stored challenge.
// A match deletes the record so the code is one-shot. A miss advances the
// attempt counter under WATCH; when the counter reaches maxAttempts the
// record is deleted and further submissions see not-found. maxAttempts 0
// disables the cap.
func (s *otpChallengeStore) Consume(ctx context.Context, phone PhoneNumber, providedHash [32]byte, maxAttempts int) error {
	const maxRetries = 4
	key := s.key(phone)

	for i := 0; i < maxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeOtpChallengeRecord(data)
			if err != nil {
				return err
			}

			now := time.Now()
			if now.Unix() > record.ExpiresAt {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return errChallengeNotFound
			}

			if subtle.ConstantTimeCompare(record.CodeHash[:], providedHash[:]) != 1 {
				record.Attempts++
				if maxAttempts > 0 && int(record.Attempts) >= maxAttempts {
					_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
						pipe.Del(ctx, key)
						return nil
					})
					if err != nil {
						return err
					}
					return errChallengeAttemptsExceeded
				}

				ttl := time.Until(time.Unix(record.ExpiresAt, 0))
				if ttl <= 0 {
					_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
						pipe.Del(ctx, key)
						return nil
					})
					if err != nil {
						return err
					}
					return errChallengeNotFound
				}

				updated, err := encodeOtpChallengeRecord(record)
				if err != nil {
					return err
				}

				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Set(ctx, key, updated, ttl)
					return nil
				})
				if err != nil {
					return err
				}
				return errChallengeCodeMismatch
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return errChallengeNotFound
			case errors.Is(err, errChallengeNotFound),
				errors.Is(err, errChallengeCodeMismatch),
				errors.Is(err, errChallengeAttemptsExceeded):
				return err
			default:
				return fmt.Errorf("%w: %v", errChallengeRedisUnavailable, err)
			}
		}

		return nil
	}

	return errChallengeNotFound
}

func encodeOtpChallengeRecord(record *otpChallengeRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(otpChallengeRecordVersionV1)

	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}
	buf.Write(record.CodeHash[:])

	return buf.Bytes(), nil
}

func decodeOtpChallengeRecord(data []byte) (*otpChallengeRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != otpChallengeRecordVersionV1 {
		return nil, errors.New("invalid otp challenge record version")
	}

	record := &otpChallengeRecord{}

	if err := binary.Read(reader, binary.BigEndian, &record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(reader, record.CodeHash[:]); err != nil {
		return nil, err
	}

	return record, nil
}
